package planar

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/san-kum/forcelayout/internal/graph"
)

var ErrNotPlanarFace = errors.New("planar: rotation schemes do not trace a simple face")

// FaceError reports where a face walk broke down. Partial holds the nodes
// traced before the failure.
type FaceError struct {
	Node    graph.NodeID
	Reason  string
	Partial []graph.NodeID
}

func (e *FaceError) Error() string {
	return fmt.Sprintf("planar: %s at node %d after %d nodes", e.Reason, e.Node, len(e.Partial))
}

func (e *FaceError) Unwrap() error {
	return ErrNotPlanarFace
}

// ExternalFace walks the outer face of g's embedding starting from node 1, or
// from a random node when startRandom is set. On failure it returns the
// partial face together with a *FaceError.
func ExternalFace(g *graph.Graph, startRandom bool) ([]graph.NodeID, error) {
	n := g.NumNodes()
	if n == 0 {
		return nil, &FaceError{Node: -1, Reason: "empty graph"}
	}
	start := graph.NodeID(min(1, n-1))
	if startRandom {
		start = graph.NodeID(rand.IntN(n))
	}
	return FaceFrom(g, start)
}

// FaceFrom traces the face reached from start by leaving it over the edge
// after the last entry of its rotation scheme, then at every node taking the
// edge that follows the incoming one in that node's rotation.
func FaceFrom(g *graph.Graph, start graph.NodeID) ([]graph.NodeID, error) {
	s := g.Node(start)
	if len(s.Rotation) == 0 {
		return nil, &FaceError{Node: start, Reason: "start node has no incident edges"}
	}

	budget := 0
	for i := range g.Nodes {
		budget += len(g.Nodes[i].Rotation)
	}

	face := []graph.NodeID{start}
	visited := make([]bool, g.NumNodes())
	visited[start] = true

	cur := start
	prev := s.Rotation[len(s.Rotation)-1]
	for range budget {
		node := g.Node(cur)
		i := slices.Index(node.Rotation, prev)
		if i < 0 {
			return face, &FaceError{Node: cur, Reason: fmt.Sprintf("edge %d missing from rotation", prev), Partial: face}
		}
		next := (i + 1) % len(node.Rotation)
		prev = node.Rotation[next]
		cur = node.Neighbours[next]

		if cur == start {
			return face, nil
		}
		if visited[cur] {
			return face, &FaceError{Node: cur, Reason: "node revisited", Partial: face}
		}
		visited[cur] = true
		face = append(face, cur)
	}
	return face, &FaceError{Node: cur, Reason: "walk did not close", Partial: face}
}

// PlaceOnCircle spreads face evenly on a circle of radius
// min(width, height)/2 - offset centred on the canvas and pins those nodes.
func PlaceOnCircle(g *graph.Graph, face []graph.NodeID, width, height, offset float64) {
	if len(face) == 0 {
		return
	}
	r := math.Max(math.Min(width, height)/2-offset, 0)
	cx, cy := width/2, height/2
	step := 2 * math.Pi / float64(len(face))
	for k, id := range face {
		n := g.Node(id)
		a := float64(k) * step
		n.X = cx + r*math.Cos(a)
		n.Y = cy + r*math.Sin(a)
		n.Fixed = true
	}
}
