package layout

import (
	"context"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/forces"
	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/integrators"
	"github.com/san-kum/forcelayout/internal/planar"
)

// convex pins the outer face of the embedding on a circle and relaxes every
// other node toward the barycenter of its neighbours.
type convex struct {
	props      Properties
	graph      *graph.Graph
	logger     *log.Logger
	integrator *integrators.Euler
	pool       *forces.Pool

	width, height float64
	face          []graph.NodeID
	pinned        []bool

	tick     int
	lastDisp float64
}

func newConvex(env Env) *convex {
	return &convex{
		props:      DefaultProperties(),
		logger:     env.Logger,
		integrator: integrators.NewEuler(0),
		pool:       forces.NewPool(),
		width:      env.Width,
		height:     env.Height,
	}
}

func (c *convex) Variant() Variant { return Convex }

// SetGraph traces the outer face and pins it. A broken face walk is logged
// and the layout proceeds with the partial boundary.
func (c *convex) SetGraph(g *graph.Graph) error {
	c.restorePins()
	c.graph = g
	c.tick, c.lastDisp = 0, 0

	c.pinned = make([]bool, g.NumNodes())
	for i := range g.Nodes {
		c.pinned[i] = g.Nodes[i].Fixed
	}

	face, err := planar.ExternalFace(g, false)
	if err != nil {
		c.logger.Warn("external face incomplete, using partial boundary", "graph", g.Name, "boundary", len(face), "err", err)
	}
	c.face = face
	c.seed()
	return nil
}

func (c *convex) seed() {
	if c.graph == nil {
		return
	}
	planar.PlaceOnCircle(c.graph, c.face, c.width, c.height, c.props.BoundaryOffset)
	c.tick, c.lastDisp = 0, 0
}

func (c *convex) restorePins() {
	if c.graph == nil {
		return
	}
	for i, fixed := range c.pinned {
		if i < c.graph.NumNodes() {
			c.graph.Nodes[i].Fixed = fixed
		}
	}
}

func (c *convex) SetProperties(p Properties) {
	offsetChanged := p.BoundaryOffset != c.props.BoundaryOffset
	c.props = p
	if offsetChanged {
		c.seed()
	}
}

// ComputeNextPositions runs one Jacobi sweep with relaxation factor
// speed*dt clamped to [0, 1]. Moves are not length-capped.
func (c *convex) ComputeNextPositions(ctx context.Context) error {
	acc := c.pool.Get(c.graph.NumNodes())
	defer c.pool.Put(acc)

	alpha := math.Min(math.Max(c.props.Speed*c.props.TimeStep, 0), 1)
	forces.Barycenter(c.graph, acc)
	c.lastDisp = c.integrator.Step(c.graph, acc, alpha, 1)
	c.tick++
	return nil
}

func (c *convex) Output() Output {
	return Output{Tick: c.tick}
}

func (c *convex) OnCanvasSizeChanged(width, height float64) {
	c.width, c.height = width, height
	c.seed()
}

func (c *convex) Converged() bool {
	return converged(c.props, c.tick, c.lastDisp)
}

// OnRemove hands the graph back with its original pins.
func (c *convex) OnRemove() error {
	c.restorePins()
	c.graph = nil
	return nil
}
