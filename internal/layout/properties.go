package layout

import (
	"fmt"
	"math"
	"strconv"

	"github.com/san-kum/forcelayout/internal/forces"
)

// Properties is the one parameter set shared by every variant. Each variant
// reads the fields it understands.
type Properties struct {
	Speed           float64       `yaml:"speed"`
	TimeStep        float64       `yaml:"time_step"`
	MaxDisplacement float64       `yaml:"max_displacement"`
	Forces          forces.Params `yaml:",inline"`
	ReadbackEvery   int           `yaml:"readback_every"`
	BoundaryOffset  float64       `yaml:"boundary_offset"`
	Tolerance       float64       `yaml:"tolerance"`
	MaxTicks        int           `yaml:"max_ticks"`
}

func DefaultProperties() Properties {
	return Properties{
		Speed:           1,
		TimeStep:        0.1,
		MaxDisplacement: 10,
		Forces:          forces.DefaultParams(),
		ReadbackEvery:   10,
		BoundaryOffset:  20,
		Tolerance:       0.01,
		MaxTicks:        0,
	}
}

type property struct {
	min     float64
	open    bool
	integer bool
	set     func(p *Properties, v float64)
}

// Recognised property keys. Lower bounds are inclusive unless open.
var properties = map[string]property{
	"speed":            {set: func(p *Properties, v float64) { p.Speed = v }},
	"timeStep":         {open: true, set: func(p *Properties, v float64) { p.TimeStep = v }},
	"maxDisplacement":  {set: func(p *Properties, v float64) { p.MaxDisplacement = v }},
	"springRestLength": {set: func(p *Properties, v float64) { p.Forces.RestLength = v }},
	"springDampening":  {set: func(p *Properties, v float64) { p.Forces.Dampening = v }},
	"charge":           {set: func(p *Properties, v float64) { p.Forces.Charge = v }},
	"theta":            {set: func(p *Properties, v float64) { p.Forces.Theta = v }},
	"epsilon":          {open: true, set: func(p *Properties, v float64) { p.Forces.Epsilon = v }},
	"readbackEvery":    {min: 1, integer: true, set: func(p *Properties, v float64) { p.ReadbackEvery = int(v) }},
	"boundaryOffset":   {set: func(p *Properties, v float64) { p.BoundaryOffset = v }},
	"tolerance":        {set: func(p *Properties, v float64) { p.Tolerance = v }},
	"maxTicks":         {integer: true, set: func(p *Properties, v float64) { p.MaxTicks = int(v) }},
}

// PropertyKeys lists the recognised keys.
func PropertyKeys() []string {
	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	return keys
}

// Apply returns p with the recognised entries of values applied. Unknown keys
// are ignored. If any recognised value is malformed or out of range, p is
// returned unchanged with an error wrapping ErrParameterBounds.
func (p Properties) Apply(values map[string]any) (Properties, error) {
	next := p
	for key, raw := range values {
		prop, ok := properties[key]
		if !ok {
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			return p, fmt.Errorf("%w: %s: %v", ErrParameterBounds, key, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < prop.min || (prop.open && v <= prop.min) {
			return p, fmt.Errorf("%w: %s = %v", ErrParameterBounds, key, raw)
		}
		if prop.integer && v != math.Trunc(v) {
			return p, fmt.Errorf("%w: %s must be an integer, got %v", ErrParameterBounds, key, raw)
		}
		prop.set(&next, v)
	}
	return next, nil
}

// Validate checks every field against the bounds Apply enforces.
func (p Properties) Validate() error {
	_, err := DefaultProperties().Apply(p.Map())
	return err
}

// Map renders p with the recognised keys.
func (p Properties) Map() map[string]any {
	return map[string]any{
		"speed":            p.Speed,
		"timeStep":         p.TimeStep,
		"maxDisplacement":  p.MaxDisplacement,
		"springRestLength": p.Forces.RestLength,
		"springDampening":  p.Forces.Dampening,
		"charge":           p.Forces.Charge,
		"theta":            p.Forces.Theta,
		"epsilon":          p.Forces.Epsilon,
		"readbackEvery":    p.ReadbackEvery,
		"boundaryOffset":   p.BoundaryOffset,
		"tolerance":        p.Tolerance,
		"maxTicks":         p.MaxTicks,
	}
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}
