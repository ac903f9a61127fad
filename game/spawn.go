package game

import "math/rand"

// FindSafeSpawn samples random positions until one is clear of every living actor
// and obstacle by the safe-zone radius. It gives up after cfg.MaxSpawnAttempts
// and returns false; callers skip the spawn and try again later.
func FindSafeSpawn(cfg *Config, rng *rand.Rand, obstacles []*Obstacle, actors []*Actor) (Vec2, bool) {
	for attempt := 0; attempt < cfg.MaxSpawnAttempts; attempt++ {
		p := Vec2{
			X: rng.Float64() * cfg.WorldWidth,
			Y: rng.Float64() * cfg.WorldHeight,
		}
		if isSafe(cfg, p, obstacles, actors) {
			return p, true
		}
	}
	return Vec2{}, false
}

func isSafe(cfg *Config, p Vec2, obstacles []*Obstacle, actors []*Actor) bool {
	for _, a := range actors {
		if a == nil || a.Dead {
			continue
		}
		if p.Dist(a.Pos) <= cfg.SafeZoneRadius {
			return false
		}
	}
	for _, o := range obstacles {
		if o == nil || !o.Alive {
			continue
		}
		if p.Dist(o.Pos) <= cfg.SafeZoneRadius+o.Radius {
			return false
		}
	}
	return true
}

// EjectedBonusPosition places a dropped bonus behind a ship: opposite its facing
// and offset against its velocity so it is not picked straight back up.
func EjectedBonusPosition(cfg *Config, origin Vec2, facing float64, vel Vec2) Vec2 {
	dist := cfg.BonusRadius * 3
	p := origin.
		Sub(FromAngle(facing).Scale(dist)).
		Sub(vel.Scale(cfg.EjectVelocityFactor))
	r := cfg.BonusRadius
	return Vec2{
		X: Clamp(p.X, r, cfg.WorldWidth-r),
		Y: Clamp(p.Y, r, cfg.WorldHeight-r),
	}
}
