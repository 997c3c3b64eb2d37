package config

import (
	"slices"

	"github.com/san-kum/forcelayout/internal/layout"
)

func preset(variant, generator string, size int, tweak func(p *layout.Properties)) *Config {
	cfg := DefaultConfig()
	cfg.Variant = variant
	cfg.Graph.Generator = generator
	cfg.Graph.Size = size
	if tweak != nil {
		tweak(&cfg.Properties)
	}
	return cfg
}

// Presets maps a graph generator to named, ready to run configurations.
var Presets = map[string]map[string]*Config{
	"grid": {
		"small":  preset("spring", "grid", 5, nil),
		"large":  preset("barnes-hut", "grid", 30, func(p *layout.Properties) { p.Forces.Theta = 0.8 }),
		"tutte":  preset("convex", "grid", 10, func(p *layout.Properties) { p.BoundaryOffset = 40 }),
		"device": preset("device", "grid", 20, nil),
	},
	"wheel": {
		"tutte":  preset("convex", "wheel", 12, nil),
		"spring": preset("spring", "wheel", 12, func(p *layout.Properties) { p.Forces.RestLength = 60 }),
	},
	"cycle": {
		"ring":  preset("spring", "cycle", 24, nil),
		"loose": preset("barnes-hut", "cycle", 60, func(p *layout.Properties) { p.Forces.Charge = 5000 }),
	},
	"tree": {
		"binary":   preset("barnes-hut", "tree", 6, nil),
		"transfer": preset("transferable", "tree", 7, func(p *layout.Properties) { p.ReadbackEvery = 5 }),
	},
	"random": {
		"sparse": preset("barnes-hut", "random", 200, nil),
		"dense":  preset("barnes-hut", "random", 1000, func(p *layout.Properties) { p.Forces.Theta = 1.0 }),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(generator, name string) *Config {
	byName, ok := Presets[generator]
	if !ok {
		return nil
	}
	cfg, ok := byName[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names for a generator in sorted order.
func ListPresets(generator string) []string {
	byName, ok := Presets[generator]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
