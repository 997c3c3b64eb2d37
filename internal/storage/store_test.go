package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/sim"
)

func sampleRun() Run {
	g := graph.Cycle(4)
	g.Nodes[1].Fixed = true
	return Run{
		Graph: g,
		Result: &sim.Result{
			Variant:   layout.HostBarnesHut,
			Ticks:     3,
			Converged: true,
			Positions: []float64{0, 0, 10, 0, 10, 10, 0, 10},
			Movement:  []float64{4.5, 1.25, 0.003},
			AlgoTime:  1500 * time.Microsecond,
		},
		Properties: layout.DefaultProperties(),
		Seed:       42,
		Device:     "software",
		Metrics:    map[string]float64{"edge_spread": 0.25},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleRun())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("expected a uuid run id, got %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Variant != "barnes-hut" {
		t.Errorf("expected variant barnes-hut, got %q", meta.Variant)
	}
	if meta.Seed != 42 || meta.Ticks != 3 || !meta.Converged {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Nodes != 4 || meta.Edges != 4 {
		t.Errorf("expected 4 nodes and 4 edges, got %d/%d", meta.Nodes, meta.Edges)
	}
	if meta.AlgoTimeMS != 1.5 {
		t.Errorf("expected 1.5ms algo time, got %f", meta.AlgoTimeMS)
	}
	if meta.Metrics["edge_spread"] != 0.25 {
		t.Errorf("expected edge_spread 0.25, got %f", meta.Metrics["edge_spread"])
	}
	if meta.Properties["charge"] != layout.DefaultProperties().Forces.Charge {
		t.Errorf("expected stored charge, got %v", meta.Properties["charge"])
	}
}

func TestStoreLayoutAndMovement(t *testing.T) {
	st := New(t.TempDir())
	run := sampleRun()
	runID, err := st.Save(run)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	g, err := st.LoadLayout(runID)
	if err != nil {
		t.Fatalf("load layout: %v", err)
	}
	want := run.Result.Positions
	got := g.Positions()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %f, got %f", i, want[i], got[i])
		}
	}
	if !g.Nodes[1].Fixed {
		t.Error("pinned flag lost")
	}
	if run.Graph.Nodes[2].X == 10 && run.Graph.Nodes[2].Y == 10 {
		t.Error("saving should not move the caller's graph")
	}

	movement, err := st.LoadMovement(runID)
	if err != nil {
		t.Fatalf("load movement: %v", err)
	}
	if len(movement) != 3 || movement[0] != 4.5 || movement[2] != 0.003 {
		t.Errorf("unexpected movement %v", movement)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	first, err := st.Save(sampleRun())
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := st.Save(sampleRun())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "stray"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected newest first, got %s then %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreUnknownRun(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load(uuid.New().String()); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.Load("../etc"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound for a non-id, got %v", err)
	}
	if _, err := st.LoadMovement(uuid.New().String()); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreSaveNeedsResult(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Save(Run{Graph: graph.Cycle(3)}); err == nil {
		t.Error("expected error for a run without a result")
	}
}
