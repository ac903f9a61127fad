package game

import (
	"errors"
	"fmt"
	"time"
)

// Variant identifies a bonus obstacle variant
type Variant string

const (
	VariantA Variant = "A"
	VariantB Variant = "B"
	VariantC Variant = "C"
	VariantD Variant = "D"
)

// Variants lists bonus variants from lowest to highest value
var Variants = []Variant{VariantA, VariantB, VariantC, VariantD}

// Config holds every tuning value the simulation depends on.
// Distances are pixels, durations seconds, speeds pixels/s.
type Config struct {
	WorldWidth  float64
	WorldHeight float64
	TickRate    int

	SafeZoneRadius   float64
	MaxSpawnAttempts int

	LargeObstacleCount  int
	LargeRadius         float64
	MediumRadius        float64
	SmallRadius         float64
	BonusRadius         float64
	ObstacleSpeed       float64
	TopUpInterval       float64
	BonusSpawnChance    float64
	BonusWeights        map[Variant]int
	BonusRewards        map[Variant]int
	EjectBonusChance    float64
	EjectVelocityFactor float64

	ScoreLarge  int
	ScoreMedium int
	ScoreSmall  int

	ProjectileRadius   float64
	ProjectileSpeed    float64
	ProjectileLifetime float64

	RotationSpeed float64 // rad/s
	Acceleration  float64 // px/s²
	Friction      float64 // velocity multiplier per FrictionFrame
	FrictionFrame float64
	MaxSpeed      float64
	ActorRadius   float64
	FireCooldown  float64
	InitialLives  int
	MaxActors     int

	ShieldDuration float64
	ShieldCooldown float64
	ShieldRadius   float64

	BoostMultiplier  float64
	BoostDuration    float64
	BoostCooldown    float64
	SlowdownDuration float64

	SparkCount     int
	SparkSpread    float64 // degrees
	SparkDistance  float64
	SparkSpeed     float64
	SparkLifetime  float64
	SparkSpeedGain float64

	LeaderboardSize     int
	LeaderboardInterval float64

	ViewportWidth  int
	ViewportHeight int
}

// DefaultConfig returns the stock arena tuning
func DefaultConfig() Config {
	return Config{
		WorldWidth:  4000,
		WorldHeight: 4000,
		TickRate:    40,

		SafeZoneRadius:   200,
		MaxSpawnAttempts: 50,

		LargeObstacleCount: 75,
		LargeRadius:        80,
		MediumRadius:       40,
		SmallRadius:        20,
		BonusRadius:        20,
		ObstacleSpeed:      100,
		TopUpInterval:      5,
		BonusSpawnChance:   0.2,
		BonusWeights: map[Variant]int{
			VariantA: 50, VariantB: 10, VariantC: 5, VariantD: 1,
		},
		BonusRewards: map[Variant]int{
			VariantA: 500, VariantB: 1000, VariantC: 2000, VariantD: 5000,
		},
		EjectBonusChance:    0.25,
		EjectVelocityFactor: 0.0005,

		ScoreLarge:  25,
		ScoreMedium: 50,
		ScoreSmall:  100,

		ProjectileRadius:   2,
		ProjectileSpeed:    400,
		ProjectileLifetime: 1.5,

		RotationSpeed: 5,
		Acceleration:  1000,
		Friction:      0.99,
		FrictionFrame: 1.0 / 60,
		MaxSpeed:      500,
		ActorRadius:   20,
		FireCooldown:  0.2,
		InitialLives:  3,
		MaxActors:     16,

		ShieldDuration: 3,
		ShieldCooldown: 5,
		ShieldRadius:   30,

		BoostMultiplier:  1.7,
		BoostDuration:    1,
		BoostCooldown:    5,
		SlowdownDuration: 1,

		SparkCount:     6,
		SparkSpread:    80,
		SparkDistance:  15,
		SparkSpeed:     150,
		SparkLifetime:  1,
		SparkSpeedGain: 1.01,

		LeaderboardSize:     10,
		LeaderboardInterval: 2,

		ViewportWidth:  800,
		ViewportHeight: 600,
	}
}

// TickDuration is the wall-clock budget of one tick
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// BonusReward returns the score for collecting a bonus of the given variant
func (c Config) BonusReward(v Variant) int {
	return c.BonusRewards[v]
}

// Validate reports the first setting the simulation cannot run with
func (c Config) Validate() error {
	switch {
	case c.WorldWidth <= 0 || c.WorldHeight <= 0:
		return fmt.Errorf("world size must be positive, got %vx%v", c.WorldWidth, c.WorldHeight)
	case c.TickRate <= 0:
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	case c.MaxSpawnAttempts <= 0:
		return errors.New("max spawn attempts must be positive")
	case c.MaxActors <= 0:
		return errors.New("max actors must be positive")
	case c.InitialLives <= 0:
		return errors.New("initial lives must be positive")
	case c.LargeObstacleCount < 0:
		return errors.New("large obstacle count must not be negative")
	case c.LeaderboardSize < 0:
		return errors.New("leaderboard size must not be negative")
	case c.FrictionFrame <= 0:
		return errors.New("friction frame must be positive")
	}
	total := 0
	for _, v := range Variants {
		w := c.BonusWeights[v]
		if w < 0 {
			return fmt.Errorf("bonus weight for %s must not be negative", v)
		}
		total += w
	}
	if total == 0 {
		return errors.New("bonus weights must not all be zero")
	}
	return nil
}
