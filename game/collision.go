package game

import "math"

// Circle is the collision shape shared by every entity
type Circle struct {
	Pos Vec2
	R   float64
}

// Body is anything that can take part in a collision test
type Body interface {
	Bounds() Circle
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (c Circle) valid() bool {
	return finite(c.Pos.X) && finite(c.Pos.Y) && finite(c.R) && c.R >= 0
}

// Overlaps reports whether two bodies' circles intersect (touching does not count).
// Missing or malformed operands never collide.
func Overlaps(a, b Body) bool {
	if a == nil || b == nil {
		return false
	}
	ca, cb := a.Bounds(), b.Bounds()
	if !ca.valid() || !cb.valid() {
		return false
	}
	return ca.Pos.Dist(cb.Pos) < ca.R+cb.R
}
