package forces

import "math"

// Params are the physical constants shared by the spring-embedder variants.
type Params struct {
	RestLength float64 `yaml:"spring_rest_length"`
	Dampening  float64 `yaml:"spring_dampening"`
	Charge     float64 `yaml:"charge"`
	Theta      float64 `yaml:"theta"`
	Epsilon    float64 `yaml:"epsilon"`
}

func DefaultParams() Params {
	return Params{
		RestLength: 40,
		Dampening:  0.1,
		Charge:     2000,
		Theta:      0.5,
		Epsilon:    0.01,
	}
}

// Spring returns the force on a from the spring joining it to b. A stretched
// spring pulls a toward b, a compressed one pushes it away. Endpoints closer
// than eps exert nothing on each other since the direction is undefined.
func Spring(a, b Vec, rest, damp, eps float64) Vec {
	d := b.Sub(a)
	l := d.Len()
	if l < eps {
		return Vec{}
	}
	return d.Scale((l - rest) * damp / l)
}

// Repulse returns the inverse-square push on body i at q away from source j
// at s. Distances are clamped to eps. Coincident points are separated along a
// direction derived from the pair, with Repulse(i, j) == -Repulse(j, i). An
// aggregate source has j < 0.
func Repulse(q, s Vec, i, j int, charge, eps float64) Vec {
	d := q.Sub(s)
	l := d.Len()
	var dir Vec
	if l == 0 {
		dir = separation(i, j)
	} else {
		dir = d.Scale(1 / l)
	}
	l = math.Max(l, eps)
	return dir.Scale(charge / (l * l))
}

func separation(i, j int) Vec {
	a, b, sign := uint32(i), uint32(j), 1.0
	switch {
	case j < 0:
		b = math.MaxUint32
	case i > j:
		a, b, sign = b, a, -1
	}
	h := pcg32(a*2654435769 ^ pcg32(b))
	angle := float64(h) / (1 << 32) * 2 * math.Pi
	return Vec{math.Cos(angle) * sign, math.Sin(angle) * sign}
}

// pcg32 output permutation. The device spring kernel hashes with the same
// function.
func pcg32(v uint32) uint32 {
	state := v*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}
