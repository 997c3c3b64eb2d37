package forces

import "math"

type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec) IsFinite() bool      { return finite(v.X) && finite(v.Y) }
func (v Vec) Dist(o Vec) float64  { return v.Sub(o).Len() }

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
