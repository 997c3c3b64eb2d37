package layout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/graph"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Engine owns the active variant and drives it one tick at a time.
type Engine struct {
	mu       sync.Mutex
	inFlight atomic.Bool

	registry *Registry
	device   compute.Device
	logger   *log.Logger
	hooks    []Hooks

	props  Properties
	graph  *graph.Graph
	width  float64
	height float64

	active  Algorithm
	variant Variant
	tick    int
}

type Option func(*Engine)

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDevice sets the compute device used by device variants.
func WithDevice(d compute.Device) Option {
	return func(e *Engine) { e.device = d }
}

func WithHooks(h ...Hooks) Option {
	return func(e *Engine) { e.hooks = append(e.hooks, h...) }
}

func WithRegistry(r *Registry) Option {
	return func(e *Engine) { e.registry = r }
}

func WithProperties(p Properties) Option {
	return func(e *Engine) { e.props = p }
}

func WithCanvas(width, height float64) Option {
	return func(e *Engine) { e.width, e.height = width, height }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		registry: NewRegistry(),
		logger:   log.New(io.Discard),
		props:    DefaultProperties(),
		width:    DefaultWidth,
		height:   DefaultHeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select switches to variant v. The outgoing variant is torn down before the
// new one is constructed. Device variants are refused up front when no
// available device is configured.
func (e *Engine) Select(v Variant) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v.RequiresDevice() && (e.device == nil || !e.device.Available()) {
		name := "none"
		if e.device != nil {
			name = e.device.Name()
		}
		return fmt.Errorf("%w: %s needs a device, have %s", ErrDeviceUnavailable, v, name)
	}
	if _, ok := e.registry.ctors[v]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, v)
	}

	if e.active != nil {
		if err := e.active.OnRemove(); err != nil {
			e.logger.Error("teardown failed", "variant", e.variant, "err", err)
		}
		e.logger.Debug("variant removed", "variant", e.variant)
		e.active = nil
	}

	alg, err := e.registry.New(v, Env{Device: e.device, Logger: e.logger.With("variant", v.String()), Width: e.width, Height: e.height})
	if err != nil {
		return err
	}
	alg.SetProperties(e.props)
	if e.graph != nil {
		if err := alg.SetGraph(e.graph); err != nil {
			return errors.Join(fmt.Errorf("set graph on %s: %w", v, err), alg.OnRemove())
		}
	}
	e.active, e.variant, e.tick = alg, v, 0
	e.logger.Info("variant selected", "variant", v)
	return nil
}

// Variant returns the active variant, if any.
func (e *Engine) Variant() (Variant, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.variant, e.active != nil
}

// SetGraph hands g to the active variant and resets convergence. The graph
// stays owned by the caller.
func (e *Engine) SetGraph(g *graph.Graph) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.graph, e.tick = g, 0
	if e.active == nil {
		return nil
	}
	return e.active.SetGraph(g)
}

func (e *Engine) Graph() *graph.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// SetProperties applies the recognised keys of values. Unknown keys are
// ignored. A malformed value rejects the whole set.
func (e *Engine) SetProperties(values map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.props.Apply(values)
	if err != nil {
		return err
	}
	e.props = next
	if e.active != nil {
		e.active.SetProperties(next)
	}
	return nil
}

func (e *Engine) Properties() Properties {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.props
}

// ComputeNextPositions runs one tick of the active variant. A call made while
// another tick is running fails with ErrTickInFlight. The context is only
// consulted before the tick starts.
func (e *Engine) ComputeNextPositions(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrTickInFlight
	}
	defer e.inFlight.Store(false)

	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return ErrUninitialized
	}
	if e.graph == nil {
		return ErrNoGraph
	}

	start := time.Now()
	err := e.active.ComputeNextPositions(ctx)
	elapsed := time.Since(start)
	if err != nil {
		err = &TickError{Tick: e.tick, Variant: e.variant, Wrapped: err}
	} else {
		e.tick++
	}
	for _, h := range e.hooks {
		h.OnTick(e.variant, elapsed, err)
	}
	return err
}

func (e *Engine) Output() Output {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return Output{}
	}
	return e.active.Output()
}

func (e *Engine) Converged() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil && e.active.Converged()
}

// Tick returns the number of completed ticks since the last Select or SetGraph.
func (e *Engine) Tick() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

func (e *Engine) OnCanvasSizeChanged(width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.width, e.height = width, height
	if e.active != nil {
		e.active.OnCanvasSizeChanged(width, height)
	}
}

// Close tears down the active variant and cleans up the device.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.active != nil {
		err = e.active.OnRemove()
		e.active = nil
	}
	if e.device != nil {
		e.device.Cleanup()
	}
	return err
}
