package compute

import (
	"fmt"
	"maps"
	"slices"
)

// Kernel binds a program to its inputs and output on one device. Texture
// slots are assigned on first use of a name and never change afterwards.
type Kernel struct {
	dev      Device
	program  *Program
	uniforms map[string]Uniform
	inputs   []Binding
	slots    map[string]int
	textures []*Texture
	output   *Texture
}

func NewKernel(dev Device, program *Program) *Kernel {
	return &Kernel{
		dev:      dev,
		program:  program,
		uniforms: make(map[string]Uniform),
		slots:    make(map[string]int),
	}
}

func (k *Kernel) Program() *Program { return k.program }

func (k *Kernel) SetInputNumber(name string, value float64, isInteger bool) {
	k.uniforms[name] = Uniform{Value: value, Integer: isInteger}
}

// SetInputTexture binds t to name and returns the name's slot.
func (k *Kernel) SetInputTexture(name string, t *Texture) int {
	if slot, ok := k.slots[name]; ok {
		k.inputs[slot].Handle = t.Handle()
		k.textures[slot] = t
		return slot
	}
	slot := len(k.inputs)
	k.slots[name] = slot
	k.inputs = append(k.inputs, Binding{Name: name, Handle: t.Handle()})
	k.textures = append(k.textures, t)
	return slot
}

func (k *Kernel) Slot(name string) (int, bool) {
	slot, ok := k.slots[name]
	return slot, ok
}

func (k *Kernel) SetOutputTexture(t *Texture) {
	k.output = t
}

// Execute runs one pass writing every pixel of the output texture.
func (k *Kernel) Execute() error {
	if k.output == nil {
		return fmt.Errorf("%s: %w", k.program.Name, ErrNoOutput)
	}
	if k.output.Released() {
		return fmt.Errorf("%s: output: %w", k.program.Name, ErrReleased)
	}
	for i, t := range k.textures {
		if t.Released() {
			return fmt.Errorf("%s: input %q: %w", k.program.Name, k.inputs[i].Name, ErrReleased)
		}
	}

	return k.dev.Dispatch(&Pass{
		Program:  k.program,
		Uniforms: maps.Clone(k.uniforms),
		Inputs:   slices.Clone(k.inputs),
		Output:   k.output.Handle(),
	})
}
