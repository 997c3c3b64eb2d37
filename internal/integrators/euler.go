package integrators

import (
	"math"

	"github.com/san-kum/forcelayout/internal/forces"
	"github.com/san-kum/forcelayout/internal/graph"
)

// Euler advances positions by force * speed * dt. A positive MaxStep caps the
// length of any single node's move per tick.
type Euler struct {
	MaxStep float64
}

func NewEuler(maxStep float64) *Euler {
	return &Euler{MaxStep: maxStep}
}

// Step moves every free node of g by its accumulated force and returns the
// largest displacement applied. Pinned nodes and non-finite forces are left
// untouched. Velocities are set to the displacement over dt.
func (e *Euler) Step(g *graph.Graph, acc forces.Accumulator, speed, dt float64) float64 {
	var maxDisp float64
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Fixed || i >= len(acc) {
			continue
		}
		d := acc[i].Scale(speed * dt)
		if !d.IsFinite() {
			continue
		}
		l := d.Len()
		if e.MaxStep > 0 && l > e.MaxStep {
			d = d.Scale(e.MaxStep / l)
			l = e.MaxStep
		}
		n.X += d.X
		n.Y += d.Y
		if dt > 0 {
			n.VX, n.VY = d.X/dt, d.Y/dt
		}
		maxDisp = math.Max(maxDisp, l)
	}
	return maxDisp
}
