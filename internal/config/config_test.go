package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/forcelayout/internal/layout"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Variant != "barnes-hut" {
		t.Errorf("expected variant barnes-hut, got %s", cfg.Variant)
	}
	if cfg.Ticks <= 0 {
		t.Error("ticks should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.Properties != layout.DefaultProperties() {
		t.Error("default config should carry the default properties")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown variant", func(c *Config) { c.Variant = "spectral" }},
		{"zero ticks", func(c *Config) { c.Ticks = 0 }},
		{"empty canvas", func(c *Config) { c.Canvas.Width = 0 }},
		{"zero graph size", func(c *Config) { c.Graph.Size = 0 }},
		{"zero time step", func(c *Config) { c.Properties.TimeStep = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
variant: convex
graph:
  generator: wheel
  size: 9
properties:
  speed: 0.5
  charge: 1200
  boundary_offset: 35
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Variant != "convex" || cfg.Graph.Generator != "wheel" || cfg.Graph.Size != 9 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Properties.Speed != 0.5 || cfg.Properties.Forces.Charge != 1200 || cfg.Properties.BoundaryOffset != 35 {
		t.Errorf("unexpected properties %+v", cfg.Properties)
	}
	if cfg.Properties.TimeStep != layout.DefaultProperties().TimeStep {
		t.Error("unset properties should keep their defaults")
	}
	if cfg.Ticks != DefaultTicks {
		t.Errorf("expected default ticks %d, got %d", DefaultTicks, cfg.Ticks)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := GetPreset("tree", "transfer")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip changed the config:\n%+v\n%+v", cfg, loaded)
	}
}

func TestBuildGraph(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Graph.Generator = "wheel"
	cfg.Graph.Size = 6
	cfg.Seed = 3

	g, err := cfg.BuildGraph()
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	if g.NumNodes() != 7 {
		t.Errorf("expected 7 nodes, got %d", g.NumNodes())
	}
	minX, minY, maxX, maxY := g.Bounds()
	if minX < 0 || minY < 0 || maxX > cfg.Graph.Scatter || maxY > cfg.Graph.Scatter {
		t.Errorf("scattered positions out of range: (%f, %f)-(%f, %f)", minX, minY, maxX, maxY)
	}

	path := filepath.Join(t.TempDir(), "edges.txt")
	if err := os.WriteFile(path, []byte("a b\nb c\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Graph.Path = path
	g, err = cfg.BuildGraph()
	if err != nil {
		t.Fatalf("build graph from file: %v", err)
	}
	if g.NumNodes() != 3 || g.NumEdges() != 2 {
		t.Errorf("expected 3 nodes and 2 edges, got %d/%d", g.NumNodes(), g.NumEdges())
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("wheel", "tutte")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Variant != "convex" {
		t.Errorf("expected variant convex, got %s", cfg.Variant)
	}

	cfg.Variant = "spring"
	if GetPreset("wheel", "tutte").Variant != "convex" {
		t.Error("GetPreset should hand out copies")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("grid", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "small") != nil {
		t.Error("expected nil for nonexistent generator")
	}
}

func TestPresetsValidate(t *testing.T) {
	for generator := range Presets {
		for _, name := range ListPresets(generator) {
			if err := GetPreset(generator, name).Validate(); err != nil {
				t.Errorf("preset %s/%s: %v", generator, name, err)
			}
		}
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent generator")
	}
}
