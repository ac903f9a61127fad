package game

import (
	"math/rand"
	"testing"
)

func TestObstacleSplit(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(1))
	pos := Vec2{1000, 1000}

	large := NewObstacle(&cfg, rng, pos, TierLarge)
	kids := large.Split(&cfg, rng)
	if len(kids) != 2 {
		t.Fatalf("large should split in two, got %d", len(kids))
	}
	for _, k := range kids {
		if k.Tier != TierMedium || k.Radius != cfg.MediumRadius {
			t.Errorf("expected medium child, got %v r=%v", k.Tier, k.Radius)
		}
		if k.Pos != pos {
			t.Errorf("child should start at parent position, got %v", k.Pos)
		}
	}

	medium := NewObstacle(&cfg, rng, pos, TierMedium)
	kids = medium.Split(&cfg, rng)
	if len(kids) != 2 || kids[0].Tier != TierSmall || kids[1].Tier != TierSmall {
		t.Error("medium should split into two small")
	}

	if NewObstacle(&cfg, rng, pos, TierSmall).Split(&cfg, rng) != nil {
		t.Error("small should not split")
	}
	if NewBonusObstacle(&cfg, rng, pos, VariantA).Split(&cfg, rng) != nil {
		t.Error("bonus should not split")
	}
}

func TestObstacleDrift(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		o := NewObstacle(&cfg, rng, Vec2{}, TierLarge)
		half := cfg.ObstacleSpeed / 2
		if o.Vel.X < -half || o.Vel.X > half || o.Vel.Y < -half || o.Vel.Y > half {
			t.Fatalf("drift velocity out of range: %v", o.Vel)
		}
	}

	o := &Obstacle{Pos: Vec2{3990, 10}, Vel: Vec2{100, -100}, Radius: 20, Alive: true}
	o.Integrate(&cfg, 0.5)
	if o.Pos.X != 40 || o.Pos.Y != 3960 {
		t.Errorf("expected wrap to (40,3960), got %v", o.Pos)
	}
}

func TestPickBonusVariant(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(42))
	counts := make(map[Variant]int)
	for i := 0; i < 20000; i++ {
		counts[PickBonusVariant(rng, cfg.BonusWeights)]++
	}
	if !(counts[VariantA] > counts[VariantB] && counts[VariantB] > counts[VariantC] && counts[VariantC] > counts[VariantD]) {
		t.Errorf("frequencies should follow weights, got %v", counts)
	}
	if counts[VariantD] == 0 {
		t.Error("rare variant should still appear")
	}

	only := map[Variant]int{VariantC: 3}
	for i := 0; i < 100; i++ {
		if v := PickBonusVariant(rng, only); v != VariantC {
			t.Fatalf("zero-weight variant %s picked", v)
		}
	}

	if PickBonusVariant(rng, nil) != VariantA {
		t.Error("no weights should fall back to the lowest variant")
	}
}

func TestNewBonusObstacle(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(3))

	b := NewBonusObstacle(&cfg, rng, Vec2{1, 2}, VariantC)
	if b.Tier != TierBonus || b.Variant != VariantC || b.Radius != cfg.BonusRadius {
		t.Errorf("unexpected bonus: %+v", b)
	}

	b = NewBonusObstacle(&cfg, rng, Vec2{}, "")
	if !validVariant(b.Variant) {
		t.Errorf("empty variant should be picked by weight, got %q", b.Variant)
	}

	if cfg.TierScore(TierBonus) != 0 {
		t.Error("bonus obstacles are not scored by shooting")
	}
}
