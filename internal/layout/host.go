package layout

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/forces"
	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/integrators"
	"github.com/san-kum/forcelayout/internal/quadtree"
)

// hostSpring runs the spring embedder on host nodes, exact or Barnes–Hut.
type hostSpring struct {
	variant    Variant
	embedder   *forces.SpringEmbedder
	integrator *integrators.Euler
	pool       *forces.Pool
	props      Properties
	graph      *graph.Graph
	logger     *log.Logger

	tick     int
	lastDisp float64
}

func newHostSpring(v Variant, env Env) *hostSpring {
	mode := forces.Exact
	if v == HostBarnesHut {
		mode = forces.BarnesHut
	}
	h := &hostSpring{
		variant:    v,
		embedder:   forces.NewSpringEmbedder(forces.DefaultParams(), mode),
		integrator: integrators.NewEuler(0),
		pool:       forces.NewPool(),
		props:      DefaultProperties(),
		logger:     env.Logger,
	}
	if mode == forces.BarnesHut {
		h.embedder.OnTree = h.logTree
	}
	return h
}

// logTree describes the first tree built after a graph change.
func (h *hostSpring) logTree(t *quadtree.Tree) {
	if h.tick != 0 || h.logger.GetLevel() > log.DebugLevel {
		return
	}
	stats := t.Stats()
	h.logger.Debug("quadtree", "cells", stats.Cells, "leaves", stats.Leaves, "depth", stats.MaxDepth)
}

func (h *hostSpring) Variant() Variant { return h.variant }

func (h *hostSpring) SetGraph(g *graph.Graph) error {
	h.graph = g
	h.tick, h.lastDisp = 0, 0
	return nil
}

func (h *hostSpring) SetProperties(p Properties) {
	h.props = p
	h.embedder.Params = p.Forces
	h.integrator.MaxStep = p.MaxDisplacement
}

func (h *hostSpring) ComputeNextPositions(ctx context.Context) error {
	g := h.graph
	acc := h.pool.Get(g.NumNodes())
	defer h.pool.Put(acc)

	h.embedder.Accumulate(g, acc)
	h.lastDisp = h.integrator.Step(g, acc, h.props.Speed, h.props.TimeStep)
	h.tick++
	return nil
}

func (h *hostSpring) Output() Output {
	return Output{Tick: h.tick}
}

func (h *hostSpring) OnCanvasSizeChanged(width, height float64) {}

func (h *hostSpring) Converged() bool {
	return converged(h.props, h.tick, h.lastDisp)
}

func (h *hostSpring) OnRemove() error {
	h.graph = nil
	return nil
}

func converged(p Properties, tick int, lastDisp float64) bool {
	if tick == 0 {
		return false
	}
	if p.MaxTicks > 0 && tick >= p.MaxTicks {
		return true
	}
	return lastDisp < p.Tolerance
}
