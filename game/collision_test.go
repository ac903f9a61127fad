package game

import (
	"math"
	"testing"
)

func circleAt(x, y, r float64) *Obstacle {
	return &Obstacle{Pos: Vec2{x, y}, Radius: r, Alive: true}
}

func TestOverlaps(t *testing.T) {
	// Overlapping circles
	if !Overlaps(circleAt(0, 0, 10), circleAt(15, 0, 10)) {
		t.Error("circles should collide (overlapping)")
	}

	// Touching circles do not count
	if Overlaps(circleAt(0, 0, 10), circleAt(20, 0, 10)) {
		t.Error("touching circles should not collide")
	}

	// Apart
	if Overlaps(circleAt(0, 0, 10), circleAt(25, 0, 10)) {
		t.Error("circles should not collide")
	}

	// Same position
	if !Overlaps(circleAt(5, 5, 1), circleAt(5, 5, 1)) {
		t.Error("same position should collide")
	}

	// Mixed kinds
	a := &Actor{Pos: Vec2{100, 100}, Radius: 20}
	p := &Projectile{Pos: Vec2{115, 100}, Radius: 2, Life: 1}
	if !Overlaps(a, p) || !Overlaps(p, a) {
		t.Error("projectile inside actor should collide both ways")
	}
}

func TestOverlapsMalformed(t *testing.T) {
	ok := circleAt(0, 0, 10)

	if Overlaps(nil, ok) || Overlaps(ok, nil) {
		t.Error("nil operand should never collide")
	}

	var missing *Obstacle
	if Overlaps(missing, ok) {
		t.Error("nil obstacle should never collide")
	}

	if Overlaps(circleAt(math.NaN(), 0, 10), ok) {
		t.Error("NaN position should never collide")
	}
	if Overlaps(circleAt(0, 0, math.Inf(1)), ok) {
		t.Error("infinite radius should never collide")
	}
	if Overlaps(circleAt(0, 0, -5), ok) {
		t.Error("negative radius should never collide")
	}
}
