package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/graph"
)

// Algorithm is the capability every variant implements.
type Algorithm interface {
	Variant() Variant
	SetGraph(g *graph.Graph) error
	SetProperties(p Properties)
	ComputeNextPositions(ctx context.Context) error
	Output() Output
	OnCanvasSizeChanged(width, height float64)
	Converged() bool
	// OnRemove releases everything the variant owns. The variant is not used
	// again afterwards.
	OnRemove() error
}

// Output tells a renderer where the latest positions are. With DirectRender
// set, Texture holds the positions of the most recent tick and host nodes may
// be stale. Otherwise the host nodes are current.
type Output struct {
	Texture      *compute.Texture
	DirectRender bool
	Tick         int
}

// Hooks receives per-tick timing.
type Hooks interface {
	OnTick(v Variant, algoTime time.Duration, err error)
}

type HooksFunc func(v Variant, algoTime time.Duration, err error)

func (f HooksFunc) OnTick(v Variant, algoTime time.Duration, err error) { f(v, algoTime, err) }

// Env is what a variant is constructed with.
type Env struct {
	Device compute.Device
	Logger *log.Logger
	Width  float64
	Height float64
}

type Constructor func(env Env) Algorithm

// Registry maps variants to constructors.
type Registry struct {
	ctors map[Variant]Constructor
}

func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[Variant]Constructor)}
	r.Register(HostSpring, func(env Env) Algorithm { return newHostSpring(HostSpring, env) })
	r.Register(HostBarnesHut, func(env Env) Algorithm { return newHostSpring(HostBarnesHut, env) })
	r.Register(DeviceSpring, func(env Env) Algorithm { return newDeviceSpring(DeviceSpring, env) })
	r.Register(Transferable, func(env Env) Algorithm { return newDeviceSpring(Transferable, env) })
	r.Register(Convex, func(env Env) Algorithm { return newConvex(env) })
	return r
}

// Register installs or replaces the constructor for v.
func (r *Registry) Register(v Variant, c Constructor) {
	r.ctors[v] = c
}

func (r *Registry) New(v Variant, env Env) (Algorithm, error) {
	c, ok := r.ctors[v]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, v)
	}
	return c(env), nil
}
