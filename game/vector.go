package game

import "math"

// Vec2 is a 2D position or velocity
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64         { return math.Sqrt(v.X*v.X + v.Y*v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }

// FromAngle returns the unit vector pointing along angle (radians)
func FromAngle(angle float64) Vec2 {
	return Vec2{math.Cos(angle), math.Sin(angle)}
}

// wrapAxis maps v into [0, size) for any magnitude or sign
func wrapAxis(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	// -tiny + size rounds to size
	if v >= size {
		v = 0
	}
	return v
}

// Wrap maps p onto the toroidal world
func Wrap(p Vec2, w, h float64) Vec2 {
	return Vec2{wrapAxis(p.X, w), wrapAxis(p.Y, h)}
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
