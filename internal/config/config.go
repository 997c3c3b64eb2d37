package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
)

const (
	DefaultVariant   = "barnes-hut"
	DefaultGenerator = "grid"
	DefaultSize      = 8
	DefaultScatter   = 500.0
	DefaultTicks     = 500
	DefaultDevice    = "software"
)

type Config struct {
	Variant     string            `yaml:"variant"`
	Device      string            `yaml:"device"`
	Ticks       int               `yaml:"ticks"`
	RecordEvery int               `yaml:"record_every"`
	Seed        uint64            `yaml:"seed"`
	Graph       GraphConfig       `yaml:"graph"`
	Canvas      CanvasConfig      `yaml:"canvas"`
	Properties  layout.Properties `yaml:"properties"`
}

// GraphConfig names the input graph: a file when Path is set, otherwise a
// generator. Scatter > 0 randomises the starting positions in a square of
// that side.
type GraphConfig struct {
	Path      string  `yaml:"path,omitempty"`
	Generator string  `yaml:"generator"`
	Size      int     `yaml:"size"`
	Scatter   float64 `yaml:"scatter"`
}

type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Variant: DefaultVariant,
		Device:  DefaultDevice,
		Ticks:   DefaultTicks,
		Graph: GraphConfig{
			Generator: DefaultGenerator,
			Size:      DefaultSize,
			Scatter:   DefaultScatter,
		},
		Canvas: CanvasConfig{
			Width:  layout.DefaultWidth,
			Height: layout.DefaultHeight,
		},
		Properties: layout.DefaultProperties(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := layout.ParseVariant(c.Variant); err != nil {
		return err
	}
	if c.Ticks <= 0 {
		return fmt.Errorf("config: ticks must be positive, got %d", c.Ticks)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("config: canvas must have a positive size, got %gx%g", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Graph.Path == "" && c.Graph.Size <= 0 {
		return fmt.Errorf("config: graph size must be positive, got %d", c.Graph.Size)
	}
	return c.Properties.Validate()
}

// LayoutVariant parses Variant.
func (c *Config) LayoutVariant() (layout.Variant, error) {
	return layout.ParseVariant(c.Variant)
}

// BuildGraph loads or generates the configured graph.
func (c *Config) BuildGraph() (*graph.Graph, error) {
	var (
		g   *graph.Graph
		err error
	)
	if c.Graph.Path != "" {
		g, err = graph.Load(c.Graph.Path)
	} else {
		g, err = graph.Generate(c.Graph.Generator, c.Graph.Size, c.Seed)
	}
	if err != nil {
		return nil, err
	}
	if c.Graph.Scatter > 0 {
		graph.Scatter(g, c.Graph.Scatter, c.Seed)
	}
	return g, nil
}

// Clone returns a copy that shares nothing with c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
