package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/forcelayout/internal/forces"
	"github.com/san-kum/forcelayout/internal/graph"
)

func TestEulerStep(t *testing.T) {
	g := graph.New("t")
	g.AddNode("a", 0, 0)
	g.AddNode("b", 10, 10)

	acc := forces.Accumulator{{X: 2, Y: 0}, {X: 0, Y: -4}}
	disp := NewEuler(0).Step(g, acc, 0.5, 2)

	if g.Nodes[0].X != 2 || g.Nodes[0].Y != 0 {
		t.Errorf("expected a at (2, 0), got (%f, %f)", g.Nodes[0].X, g.Nodes[0].Y)
	}
	if g.Nodes[1].X != 10 || g.Nodes[1].Y != 6 {
		t.Errorf("expected b at (10, 6), got (%f, %f)", g.Nodes[1].X, g.Nodes[1].Y)
	}
	if disp != 4 {
		t.Errorf("expected max displacement 4, got %f", disp)
	}
	if g.Nodes[1].VY != -2 {
		t.Errorf("expected velocity -2, got %f", g.Nodes[1].VY)
	}
}

func TestEulerClampsDisplacement(t *testing.T) {
	g := graph.New("t")
	g.AddNode("a", 0, 0)

	acc := forces.Accumulator{{X: 3e6, Y: 4e6}}
	disp := NewEuler(5).Step(g, acc, 1, 1)

	if math.Abs(disp-5) > 1e-9 {
		t.Errorf("expected clamped displacement 5, got %f", disp)
	}
	if math.Abs(g.Nodes[0].X-3) > 1e-9 || math.Abs(g.Nodes[0].Y-4) > 1e-9 {
		t.Errorf("expected direction kept, got (%f, %f)", g.Nodes[0].X, g.Nodes[0].Y)
	}
}

func TestEulerSkipsPinnedAndNonFinite(t *testing.T) {
	g := graph.New("t")
	g.AddNode("pinned", 1, 1)
	g.AddNode("nan", 2, 2)
	g.Nodes[0].Fixed = true

	acc := forces.Accumulator{{X: 100, Y: 100}, {X: math.NaN(), Y: 1}}
	disp := NewEuler(10).Step(g, acc, 1, 1)

	if g.Nodes[0].X != 1 || g.Nodes[0].Y != 1 {
		t.Error("pinned node moved")
	}
	if g.Nodes[1].X != 2 || g.Nodes[1].Y != 2 {
		t.Error("node moved by a non-finite force")
	}
	if disp != 0 {
		t.Errorf("expected no displacement, got %f", disp)
	}
}
