package game

import (
	"math"
	"math/rand"
)

// Tier is the size class of an obstacle
type Tier int

const (
	TierLarge Tier = iota
	TierMedium
	TierSmall
	TierBonus
)

func (t Tier) String() string {
	switch t {
	case TierLarge:
		return "large"
	case TierMedium:
		return "medium"
	case TierSmall:
		return "small"
	case TierBonus:
		return "bonus"
	}
	return "unknown"
}

// Obstacle is a drifting asteroid. Large and medium obstacles split when shot;
// bonus obstacles are collected by flying into them.
type Obstacle struct {
	ID      uint64
	Pos     Vec2
	Vel     Vec2
	Radius  float64
	Tier    Tier
	Variant Variant // only set for TierBonus
	Alive   bool
}

// TierRadius returns the configured radius for a tier
func (c *Config) TierRadius(t Tier) float64 {
	switch t {
	case TierMedium:
		return c.MediumRadius
	case TierSmall:
		return c.SmallRadius
	case TierBonus:
		return c.BonusRadius
	default:
		return c.LargeRadius
	}
}

// TierScore returns the points for shooting down an obstacle of tier t
func (c *Config) TierScore(t Tier) int {
	switch t {
	case TierLarge:
		return c.ScoreLarge
	case TierMedium:
		return c.ScoreMedium
	case TierSmall:
		return c.ScoreSmall
	}
	return 0
}

// NewObstacle creates an obstacle at pos with a random drift velocity
func NewObstacle(cfg *Config, rng *rand.Rand, pos Vec2, tier Tier) *Obstacle {
	return &Obstacle{
		Pos: pos,
		Vel: Vec2{
			X: (rng.Float64() - 0.5) * cfg.ObstacleSpeed,
			Y: (rng.Float64() - 0.5) * cfg.ObstacleSpeed,
		},
		Radius: cfg.TierRadius(tier),
		Tier:   tier,
		Alive:  true,
	}
}

// NewBonusObstacle creates a bonus obstacle. An empty variant picks one by weight.
func NewBonusObstacle(cfg *Config, rng *rand.Rand, pos Vec2, variant Variant) *Obstacle {
	if !validVariant(variant) {
		variant = PickBonusVariant(rng, cfg.BonusWeights)
	}
	o := NewObstacle(cfg, rng, pos, TierBonus)
	o.Variant = variant
	return o
}

func validVariant(v Variant) bool {
	for _, known := range Variants {
		if v == known {
			return true
		}
	}
	return false
}

// PickBonusVariant draws a variant with probability proportional to its weight
func PickBonusVariant(rng *rand.Rand, weights map[Variant]int) Variant {
	total := 0
	for _, v := range Variants {
		if w := weights[v]; w > 0 {
			total += w
		}
	}
	if total == 0 {
		return VariantA
	}
	roll := rng.Float64() * float64(total)
	cumulative := 0.0
	for _, v := range Variants {
		w := weights[v]
		if w <= 0 {
			continue
		}
		cumulative += float64(w)
		if roll < cumulative {
			return v
		}
	}
	return Variants[len(Variants)-1]
}

func (o *Obstacle) Kind() Kind { return KindObstacle }

// Integrate drifts the obstacle one tick, wrapping around world edges
func (o *Obstacle) Integrate(cfg *Config, dt float64) {
	o.Pos = Wrap(o.Pos.Add(o.Vel.Scale(dt)), cfg.WorldWidth, cfg.WorldHeight)
}

// Split returns the two children replacing a destroyed large or medium obstacle.
// Small and bonus obstacles return nil: they are fully destroyed.
func (o *Obstacle) Split(cfg *Config, rng *rand.Rand) []*Obstacle {
	var child Tier
	switch o.Tier {
	case TierLarge:
		child = TierMedium
	case TierMedium:
		child = TierSmall
	default:
		return nil
	}
	return []*Obstacle{
		NewObstacle(cfg, rng, o.Pos, child),
		NewObstacle(cfg, rng, o.Pos, child),
	}
}

// CanSplit reports whether the tier breaks into smaller pieces
func (o *Obstacle) CanSplit() bool {
	return o.Tier == TierLarge || o.Tier == TierMedium
}

// SetVelocity replaces the drift velocity
func (o *Obstacle) SetVelocity(v Vec2) {
	o.Vel = v
}

func (o *Obstacle) Bounds() Circle {
	if o == nil {
		return Circle{R: math.NaN()}
	}
	return Circle{Pos: o.Pos, R: o.Radius}
}

// ToState converts to snapshot state
func (o *Obstacle) ToState() ObstacleState {
	return ObstacleState{
		ID:      o.ID,
		X:       round1(o.Pos.X),
		Y:       round1(o.Pos.Y),
		VX:      round1(o.Vel.X),
		VY:      round1(o.Vel.Y),
		R:       o.Radius,
		Size:    o.Tier.String(),
		Variant: string(o.Variant),
	}
}
