//go:build opengl

package compute

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.3-core/gl"
)

type glTexture struct {
	id                      uint32
	width, height, channels int
}

// OpenGL runs programs as compute shaders over RGBA32F textures. The caller
// must have made a 4.3 core context current on the calling thread before the
// first use, and keep using the device from that thread.
type OpenGL struct {
	initOnce sync.Once
	initErr  error

	textures map[Handle]glTexture
	programs map[string]uint32
	next     Handle
}

func NewOpenGL() *OpenGL {
	return &OpenGL{
		textures: make(map[Handle]glTexture),
		programs: make(map[string]uint32),
	}
}

func (o *OpenGL) Name() string { return "opengl" }

func (o *OpenGL) init() error {
	o.initOnce.Do(func() {
		if err := gl.Init(); err != nil {
			o.initErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	})
	return o.initErr
}

func (o *OpenGL) Available() bool {
	return o.init() == nil
}

func (o *OpenGL) Alloc(width, height, channels int) (Handle, error) {
	if err := o.init(); err != nil {
		return 0, err
	}
	if channels != PixelChannels {
		return 0, fmt.Errorf("%w: opengl textures are RGBA, got %d channels", ErrDimensionMismatch, channels)
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexStorage2D(gl.TEXTURE_2D, 1, gl.RGBA32F, int32(width), int32(height))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	o.next++
	o.textures[o.next] = glTexture{id: id, width: width, height: height, channels: channels}
	return o.next, nil
}

func (o *OpenGL) lookup(h Handle) (glTexture, error) {
	t, ok := o.textures[h]
	if !ok {
		return glTexture{}, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return t, nil
}

func (o *OpenGL) Write(h Handle, data []float32) error {
	t, err := o.lookup(h)
	if err != nil {
		return err
	}
	if len(data) != t.width*t.height*t.channels {
		return fmt.Errorf("%w: got %d values", ErrDimensionMismatch, len(data))
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(t.width), int32(t.height), gl.RGBA, gl.FLOAT, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

func (o *OpenGL) Read(h Handle, dst []float32) error {
	t, err := o.lookup(h)
	if err != nil {
		return err
	}
	if len(dst) != t.width*t.height*t.channels {
		return fmt.Errorf("%w: got %d slots", ErrDimensionMismatch, len(dst))
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.FLOAT, gl.Ptr(dst))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

func (o *OpenGL) Free(h Handle) error {
	t, err := o.lookup(h)
	if err != nil {
		return err
	}
	gl.DeleteTextures(1, &t.id)
	delete(o.textures, h)
	return nil
}

func (o *OpenGL) Dispatch(p *Pass) error {
	out, err := o.lookup(p.Output)
	if err != nil {
		return err
	}
	program, err := o.program(p.Program)
	if err != nil {
		return err
	}

	gl.UseProgram(program)
	for name, u := range p.Uniforms {
		loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
		if u.Integer {
			gl.Uniform1i(loc, int32(u.Value))
		} else {
			gl.Uniform1f(loc, float32(u.Value))
		}
	}
	for slot, b := range p.Inputs {
		t, err := o.lookup(b.Handle)
		if err != nil {
			return fmt.Errorf("input %q: %w", b.Name, err)
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
		gl.BindTexture(gl.TEXTURE_2D, t.id)
		gl.Uniform1i(gl.GetUniformLocation(program, gl.Str(b.Name+"\x00")), int32(slot))
	}
	gl.BindImageTexture(0, out.id, 0, false, 0, gl.WRITE_ONLY, gl.RGBA32F)

	gl.DispatchCompute(uint32((out.width+7)/8), uint32((out.height+7)/8), 1)
	gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT | gl.TEXTURE_FETCH_BARRIER_BIT | gl.TEXTURE_UPDATE_BARRIER_BIT)

	for slot := range p.Inputs {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.BindImageTexture(0, 0, 0, false, 0, gl.WRITE_ONLY, gl.RGBA32F)
	gl.UseProgram(0)
	return nil
}

func (o *OpenGL) program(p *Program) (uint32, error) {
	if id, ok := o.programs[p.Name]; ok {
		return id, nil
	}
	id, err := createComputeProgram(p.GLSL)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", p.Name, err)
	}
	o.programs[p.Name] = id
	return id, nil
}

func (o *OpenGL) Cleanup() {
	for h, t := range o.textures {
		gl.DeleteTextures(1, &t.id)
		delete(o.textures, h)
	}
	for name, id := range o.programs {
		gl.DeleteProgram(id)
		delete(o.programs, name)
	}
}

func createComputeProgram(source string) (uint32, error) {
	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile compute shader: %v", log)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)
	gl.DeleteShader(shader)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link compute program")
	}
	return program, nil
}
