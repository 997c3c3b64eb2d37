package forces

import (
	"fmt"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/quadtree"
	"github.com/san-kum/forcelayout/internal/workers"
)

// Mode selects how the repulsive term is summed.
type Mode int

const (
	// Exact sums every node pair.
	Exact Mode = iota
	// BarnesHut approximates far regions through a quadtree.
	BarnesHut
)

func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case BarnesHut:
		return "barnes-hut"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

const minChunk = 32

// SpringEmbedder computes spring attraction along edges plus pairwise charge
// repulsion. Every node's force is written by exactly one worker in a fixed
// summation order, so results do not depend on scheduling.
type SpringEmbedder struct {
	Params Params
	Mode   Mode
	// OnTree, when set, receives the tree built for each Barnes–Hut pass.
	OnTree func(*quadtree.Tree)
}

func NewSpringEmbedder(p Params, mode Mode) *SpringEmbedder {
	return &SpringEmbedder{Params: p, Mode: mode}
}

// Accumulate writes the net force on every node of g into acc, which must have
// one entry per node. Pinned nodes end up with zero force.
func (s *SpringEmbedder) Accumulate(g *graph.Graph, acc Accumulator) {
	n := g.NumNodes()
	if len(acc) != n {
		panic(fmt.Sprintf("forces: accumulator has %d entries for %d nodes", len(acc), n))
	}
	clear(acc)

	switch s.Mode {
	case BarnesHut:
		s.barnesHut(g, acc)
	default:
		s.exact(g, acc)
	}

	workers.For(n, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			acc[i] = acc[i].Add(s.springs(g, i))
		}
	})
	ZeroPinned(g, acc)
}

func (s *SpringEmbedder) exact(g *graph.Graph, acc Accumulator) {
	p := s.Params
	workers.For(len(g.Nodes), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			q := pos(&g.Nodes[i])
			var f Vec
			for j := range g.Nodes {
				if j == i {
					continue
				}
				f = f.Add(Repulse(q, pos(&g.Nodes[j]), i, j, p.Charge, p.Epsilon))
			}
			acc[i] = f
		}
	})
}

func (s *SpringEmbedder) barnesHut(g *graph.Graph, acc Accumulator) {
	p := s.Params
	tree := BuildTree(g)
	if s.OnTree != nil {
		s.OnTree(tree)
	}
	workers.For(len(g.Nodes), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			q := pos(&g.Nodes[i])
			var f Vec
			for src := range tree.Sources(i, q.X, q.Y, p.Theta) {
				f = f.Add(Repulse(q, Vec{src.X, src.Y}, i, src.Index, p.Charge*src.Charge, p.Epsilon))
			}
			acc[i] = f
		}
	})
}

func (s *SpringEmbedder) springs(g *graph.Graph, i int) Vec {
	p := s.Params
	n := &g.Nodes[i]
	a := pos(n)
	var f Vec
	for _, nb := range n.Neighbours {
		f = f.Add(Spring(a, pos(&g.Nodes[nb]), p.RestLength, p.Dampening, p.Epsilon))
	}
	return f
}

// BuildTree indexes every node of g as a unit charge.
func BuildTree(g *graph.Graph) *quadtree.Tree {
	bodies := make([]quadtree.Body, len(g.Nodes))
	for i := range g.Nodes {
		bodies[i] = quadtree.Body{Index: i, X: g.Nodes[i].X, Y: g.Nodes[i].Y, Charge: 1}
	}
	return quadtree.Build(bodies, 0.1)
}

// ZeroPinned discards whatever force was computed for pinned nodes.
func ZeroPinned(g *graph.Graph, acc Accumulator) {
	for i := range g.Nodes {
		if g.Nodes[i].Fixed {
			acc[i] = Vec{}
		}
	}
}

func pos(n *graph.Node) Vec {
	return Vec{n.X, n.Y}
}
