package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/config"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/metrics"
)

func layoutCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	configFile, preset, overrides = "", "", nil
	cmd := &cobra.Command{Use: "test"}
	addLayoutFlags(cmd)
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(layoutCmd(t))
	if err != nil {
		t.Fatal(err)
	}
	want := config.DefaultConfig()
	if cfg.Variant != want.Variant || cfg.Graph.Size != want.Graph.Size || cfg.Ticks != want.Ticks {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestResolveConfigFlagsOverride(t *testing.T) {
	cmd := layoutCmd(t, "--preset", "wheel/tutte", "--size", "9", "--set", "charge=1200,theta=0.7")
	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Variant != "convex" || cfg.Graph.Generator != "wheel" {
		t.Errorf("preset not applied: %s on %s", cfg.Variant, cfg.Graph.Generator)
	}
	if cfg.Graph.Size != 9 {
		t.Errorf("size = %d, want 9", cfg.Graph.Size)
	}
	if cfg.Properties.Forces.Charge != 1200 || cfg.Properties.Forces.Theta != 0.7 {
		t.Errorf("properties = %+v", cfg.Properties.Forces)
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte("variant: spring\nticks: 40\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolveConfig(layoutCmd(t, "--config", path, "--ticks", "12"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Variant != "spring" {
		t.Errorf("variant = %q, want spring", cfg.Variant)
	}
	if cfg.Ticks != 12 {
		t.Errorf("ticks = %d, want the flag value 12", cfg.Ticks)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"preset without generator", []string{"--preset", "small"}},
		{"unknown preset", []string{"--preset", "grid/huge"}},
		{"unknown property", []string{"--set", "gravity=1"}},
		{"property out of range", []string{"--set", "timeStep=0"}},
		{"unknown variant", []string{"--variant", "fruchterman"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := resolveConfig(layoutCmd(t, tt.args...)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewDevice(t *testing.T) {
	dev, err := newDevice("software")
	if err != nil || !dev.Available() {
		t.Fatalf("software: %v, %v", dev, err)
	}
	if _, err := newDevice("opengl"); err != nil {
		t.Errorf("opengl: %v", err)
	}
	if dev, err := newDevice("none"); err != nil || dev != nil {
		t.Errorf("none: got %v, %v", dev, err)
	}
	if _, err := newDevice("vulkan"); err == nil {
		t.Error("expected error for unknown device")
	}
}

func TestSetupSelectsVariant(t *testing.T) {
	var buf bytes.Buffer
	logger = newLogger(&buf, log.DebugLevel)

	cfg, err := resolveConfig(layoutCmd(t, "--preset", "grid/small", "--device", "none"))
	if err != nil {
		t.Fatal(err)
	}
	engine, g, err := setup(cfg, metrics.NewRecorder(0))
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()
	if v, ok := engine.Variant(); !ok || v.String() != "spring" {
		t.Errorf("variant = %v, %v", v, ok)
	}
	if g.NumNodes() != 25 {
		t.Errorf("nodes = %d, want 25", g.NumNodes())
	}
	if !bytes.Contains(buf.Bytes(), []byte("variant selected")) {
		t.Errorf("missing log line in %q", buf.String())
	}

	cfg.Variant = "device"
	if _, _, err := setup(cfg, metrics.NewRecorder(0)); err == nil {
		t.Error("device variant without a device should fail")
	}
}

func TestTuneObjective(t *testing.T) {
	logger = newLogger(io.Discard, log.InfoLevel)
	cfg, err := resolveConfig(layoutCmd(t, "--preset", "grid/small", "--ticks", "20"))
	if err != nil {
		t.Fatal(err)
	}
	search, names, err := parseSweeps([]string{"charge=500:2000:2", "springRestLength=30"})
	if err != nil {
		t.Fatal(err)
	}
	if search.Size() != 2 || len(names) != 2 {
		t.Fatalf("size %d, names %v", search.Size(), names)
	}

	best, trials, err := search.Search(t.Context(), layoutObjective(cfg, "edge_spread"))
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range trials {
		if tr.Err != nil {
			t.Errorf("trial %v: %v", tr.Params, tr.Err)
		}
		if tr.Score < 0 {
			t.Errorf("trial %v: negative spread %v", tr.Params, tr.Score)
		}
	}
	if best.Params["springRestLength"] != 30 {
		t.Errorf("best = %+v", best)
	}
}

func TestParseSweepsErrors(t *testing.T) {
	for _, specs := range [][]string{
		{"gravity=1:2:2"},
		{"charge=1:2:2", "charge=3"},
		{"charge"},
	} {
		if _, _, err := parseSweeps(specs); err == nil {
			t.Errorf("%v: expected error", specs)
		}
	}
	if _, err := newMetric("beauty", nil, layout.DefaultProperties()); err == nil {
		t.Error("expected unknown objective error")
	}
}
