package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
)

func newEngine(t *testing.T, props map[string]any) *layout.Engine {
	t.Helper()
	g := graph.Cycle(6)
	graph.Scatter(g, 300, 7)

	e := layout.NewEngine()
	if err := e.Select(layout.HostSpring); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := e.SetGraph(g); err != nil {
		t.Fatalf("set graph: %v", err)
	}
	if err := e.SetProperties(props); err != nil {
		t.Fatalf("set properties: %v", err)
	}
	return e
}

func TestDriverStopsAtConvergence(t *testing.T) {
	e := newEngine(t, map[string]any{"maxTicks": 5})
	d := New(e, nil)

	result, err := d.Run(context.Background(), Config{MaxTicks: 100})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.Converged {
		t.Error("expected the run to converge")
	}
	if result.Ticks != 5 {
		t.Errorf("expected 5 ticks, got %d", result.Ticks)
	}
	if len(result.Movement) != 5 {
		t.Errorf("expected 5 movement samples, got %d", len(result.Movement))
	}
	if result.Variant != layout.HostSpring {
		t.Errorf("expected variant %s, got %s", layout.HostSpring, result.Variant)
	}
}

func TestDriverTickBudget(t *testing.T) {
	e := newEngine(t, map[string]any{"tolerance": 0})
	d := New(e, nil)

	result, err := d.Run(context.Background(), Config{MaxTicks: 3, RecordEvery: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Converged {
		t.Error("run should not converge with zero tolerance")
	}
	if result.Ticks != 3 || len(result.Frames) != 3 {
		t.Errorf("expected 3 ticks and 3 frames, got %d and %d", result.Ticks, len(result.Frames))
	}

	want := e.Graph().Positions()
	for i := range want {
		if result.Positions[i] != want[i] {
			t.Fatalf("result positions differ from the graph at %d", i)
		}
	}
	if result.FinalMovement() <= 0 {
		t.Error("scattered cycle should move")
	}
}

func TestDriverObservers(t *testing.T) {
	e := newEngine(t, map[string]any{"tolerance": 0})
	d := New(e, nil)

	var ticks []int
	var moved []float64
	d.AddObserver(ObserverFunc(func(tick int, positions []float64, movement float64) {
		ticks = append(ticks, tick)
		moved = append(moved, movement)
		if len(positions) != 12 {
			t.Errorf("expected 12 coordinates, got %d", len(positions))
		}
	}))

	result, err := d.Run(context.Background(), Config{MaxTicks: 4})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(ticks) != 4 || ticks[0] != 1 || ticks[3] != 4 {
		t.Errorf("expected ticks 1..4, got %v", ticks)
	}
	for i := range moved {
		if moved[i] != result.Movement[i] {
			t.Errorf("observer saw movement %f, result has %f", moved[i], result.Movement[i])
		}
	}
}

func TestDriverCancelled(t *testing.T) {
	e := newEngine(t, nil)
	d := New(e, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := d.Run(ctx, Config{MaxTicks: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Ticks != 0 {
		t.Fatalf("expected an empty partial result, got %+v", result)
	}
	if e.Tick() != 0 {
		t.Errorf("engine ticked %d times after cancellation", e.Tick())
	}
}

func TestDriverNoVariant(t *testing.T) {
	d := New(layout.NewEngine(), nil)
	if _, err := d.Run(context.Background(), DefaultConfig()); !errors.Is(err, ErrNoVariant) {
		t.Errorf("expected ErrNoVariant, got %v", err)
	}
}

func TestDriverInvalidConfig(t *testing.T) {
	e := newEngine(t, nil)
	d := New(e, nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero ticks", Config{MaxTicks: 0}},
		{"negative ticks", Config{MaxTicks: -1}},
		{"negative record interval", Config{MaxTicks: 10, RecordEvery: -2}},
		{"negative pacing", Config{MaxTicks: 10, Interval: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestMovement(t *testing.T) {
	prev := []float64{0, 0, 10, 10}
	cur := []float64{3, 4, 10, 11}
	if got := movement(prev, cur); got != 5 {
		t.Errorf("expected movement 5, got %f", got)
	}
}
