package graph

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Generators place nodes on a rough initial embedding and derive rotation
// schemes from it, so the results can seed planar traversal as well as the
// force models.

// Cycle returns an n-cycle laid out on a circle.
func Cycle(n int) *Graph {
	g := New(fmt.Sprintf("cycle-%d", n))
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		g.AddNode(fmt.Sprint(i), 100*math.Cos(a), 100*math.Sin(a))
	}
	for i := 0; i < n; i++ {
		g.MustEdge(NodeID(i), NodeID((i+1)%n))
	}
	g.OrderRotationsByAngle()
	return g
}

// Wheel returns a hub (node 0) connected to an (n)-cycle rim (nodes 1..n).
func Wheel(n int) *Graph {
	g := New(fmt.Sprintf("wheel-%d", n))
	g.AddNode("hub", 0, 0)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		g.AddNode(fmt.Sprint(i+1), 100*math.Cos(a), 100*math.Sin(a))
	}
	for i := 1; i <= n; i++ {
		g.MustEdge(0, NodeID(i))
		next := i%n + 1
		g.MustEdge(NodeID(i), NodeID(next))
	}
	g.OrderRotationsByAngle()
	return g
}

// Grid returns a rows x cols lattice, ids in row-major order.
func Grid(rows, cols int) *Graph {
	g := New(fmt.Sprintf("grid-%dx%d", rows, cols))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.AddNode(fmt.Sprintf("%d,%d", r, c), float64(c)*20, float64(r)*20)
		}
	}
	id := func(r, c int) NodeID { return NodeID(r*cols + c) }
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				g.MustEdge(id(r, c), id(r, c+1))
			}
			if r+1 < rows {
				g.MustEdge(id(r, c), id(r+1, c))
			}
		}
	}
	g.OrderRotationsByAngle()
	return g
}

// Tree returns a complete tree with the given branching factor and depth.
func Tree(branching, depth int, seed uint64) *Graph {
	g := New(fmt.Sprintf("tree-%d-%d", branching, depth))
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g.AddNode("root", 0, 0)
	level := []NodeID{0}
	for d := 0; d < depth; d++ {
		var next []NodeID
		for _, parent := range level {
			for b := 0; b < branching; b++ {
				p := g.Nodes[parent]
				child := g.AddNode(fmt.Sprintf("%d.%d", parent, b), p.X+rng.Float64()*40-20, p.Y+rng.Float64()*40-20)
				g.MustEdge(parent, child)
				next = append(next, child)
			}
		}
		level = next
	}
	g.OrderRotationsByAngle()
	return g
}

// Random returns an Erdős–Rényi style graph with n nodes scattered in a
// size x size square and m distinct random edges.
func Random(n, m int, size float64, seed uint64) *Graph {
	g := New(fmt.Sprintf("random-%d-%d", n, m))
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := 0; i < n; i++ {
		g.AddNode(fmt.Sprint(i), rng.Float64()*size, rng.Float64()*size)
	}
	if n < 2 {
		return g
	}
	maxEdges := n * (n - 1) / 2
	if m > maxEdges {
		m = maxEdges
	}
	seen := make(map[[2]NodeID]bool, m)
	for len(g.Edges) < m {
		a, b := NodeID(rng.IntN(n)), NodeID(rng.IntN(n))
		if a == b {
			continue
		}
		key := [2]NodeID{min(a, b), max(a, b)}
		if seen[key] {
			continue
		}
		seen[key] = true
		g.MustEdge(a, b)
	}
	g.OrderRotationsByAngle()
	return g
}

// Scatter moves every node to a uniform random point in a size x size square.
func Scatter(g *Graph, size float64, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range g.Nodes {
		g.Nodes[i].X = rng.Float64() * size
		g.Nodes[i].Y = rng.Float64() * size
	}
}

// Generate builds a named generator graph, e.g. "grid" with size 5 gives a 5x5 lattice.
func Generate(kind string, size int, seed uint64) (*Graph, error) {
	if size < 1 {
		return nil, fmt.Errorf("graph: generator size must be positive, got %d", size)
	}
	switch kind {
	case "cycle":
		return Cycle(max(size, 3)), nil
	case "wheel":
		return Wheel(max(size, 3)), nil
	case "grid":
		return Grid(size, size), nil
	case "tree":
		return Tree(2, size, seed), nil
	case "random":
		return Random(size, size*2, 500, seed), nil
	default:
		return nil, fmt.Errorf("graph: unknown generator %q", kind)
	}
}
