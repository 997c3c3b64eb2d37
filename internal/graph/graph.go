package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrUnknownNode indicates an edge endpoint that is not in the arena.
	ErrUnknownNode = errors.New("graph: unknown node id")

	// ErrSelfLoop indicates an edge whose endpoints are the same node.
	ErrSelfLoop = errors.New("graph: self loops are not supported")
)

type NodeID int

type EdgeID int

// Node is a vertex stored in the graph arena. Rotation holds the cyclic order of
// incident edges and Neighbours the node at the other end of Rotation[i].
type Node struct {
	ID         NodeID
	Label      string
	X, Y       float64
	VX, VY     float64
	Fixed      bool
	Rotation   []EdgeID
	Neighbours []NodeID
}

type Edge struct {
	ID     EdgeID
	Source NodeID
	Target NodeID
}

// Graph owns its nodes and edges. Algorithms only hold ids into it.
type Graph struct {
	Name  string
	Nodes []Node
	Edges []Edge
}

func New(name string) *Graph {
	return &Graph{Name: name}
}

func (g *Graph) NumNodes() int { return len(g.Nodes) }
func (g *Graph) NumEdges() int { return len(g.Edges) }

func (g *Graph) AddNode(label string, x, y float64) NodeID {
	id := NodeID(len(g.Nodes))
	g.Nodes = append(g.Nodes, Node{ID: id, Label: label, X: x, Y: y})
	return id
}

// AddEdge appends an undirected edge and records it at the end of both
// endpoints' rotation schemes.
func (g *Graph) AddEdge(source, target NodeID) (EdgeID, error) {
	if !g.valid(source) || !g.valid(target) {
		return -1, fmt.Errorf("%w: %d-%d", ErrUnknownNode, source, target)
	}
	if source == target {
		return -1, fmt.Errorf("%w: %d", ErrSelfLoop, source)
	}
	id := EdgeID(len(g.Edges))
	g.Edges = append(g.Edges, Edge{ID: id, Source: source, Target: target})

	s, t := &g.Nodes[source], &g.Nodes[target]
	s.Rotation = append(s.Rotation, id)
	s.Neighbours = append(s.Neighbours, target)
	t.Rotation = append(t.Rotation, id)
	t.Neighbours = append(t.Neighbours, source)
	return id, nil
}

// MustEdge is AddEdge for generators whose ids are known to be valid.
func (g *Graph) MustEdge(source, target NodeID) EdgeID {
	id, err := g.AddEdge(source, target)
	if err != nil {
		panic(err)
	}
	return id
}

func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.Nodes)
}

func (g *Graph) Node(id NodeID) *Node {
	return &g.Nodes[id]
}

// Other returns the endpoint of e that is not n.
func (g *Graph) Other(e EdgeID, n NodeID) NodeID {
	edge := g.Edges[e]
	if edge.Source == n {
		return edge.Target
	}
	return edge.Source
}

func (g *Graph) Degree(n NodeID) int {
	return len(g.Nodes[n].Rotation)
}

// OrderRotationsByAngle sorts every node's rotation scheme counter-clockwise by
// the angle of the edge in the current coordinates, keeping Neighbours aligned.
func (g *Graph) OrderRotationsByAngle() {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		type incident struct {
			edge  EdgeID
			other NodeID
			angle float64
		}
		inc := make([]incident, len(n.Rotation))
		for k, e := range n.Rotation {
			o := n.Neighbours[k]
			inc[k] = incident{
				edge:  e,
				other: o,
				angle: normalizeAngle(math.Atan2(g.Nodes[o].Y-n.Y, g.Nodes[o].X-n.X)),
			}
		}
		sort.SliceStable(inc, func(a, b int) bool { return inc[a].angle < inc[b].angle })
		for k := range inc {
			n.Rotation[k] = inc[k].edge
			n.Neighbours[k] = inc[k].other
		}
	}
}

func normalizeAngle(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Positions returns a flat x,y slice in node order.
func (g *Graph) Positions() []float64 {
	pos := make([]float64, 2*len(g.Nodes))
	for i := range g.Nodes {
		pos[2*i] = g.Nodes[i].X
		pos[2*i+1] = g.Nodes[i].Y
	}
	return pos
}

func (g *Graph) SetPositions(pos []float64) {
	for i := range g.Nodes {
		if 2*i+1 >= len(pos) {
			return
		}
		g.Nodes[i].X = pos[2*i]
		g.Nodes[i].Y = pos[2*i+1]
	}
}

// Bounds returns the axis aligned bounding box of all node positions.
func (g *Graph) Bounds() (minX, minY, maxX, maxY float64) {
	if len(g.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X)
		maxY = math.Max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY
}

func (g *Graph) Clone() *Graph {
	c := &Graph{
		Name:  g.Name,
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(c.Edges, g.Edges)
	for i, n := range g.Nodes {
		n.Rotation = append([]EdgeID(nil), n.Rotation...)
		n.Neighbours = append([]NodeID(nil), n.Neighbours...)
		c.Nodes[i] = n
	}
	return c
}
