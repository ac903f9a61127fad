package game

import "math"

// Kind tags the three entity variants the simulation knows about
type Kind int

const (
	KindActor Kind = iota
	KindProjectile
	KindObstacle
)

// Entity is the fixed capability set shared by actors, projectiles and obstacles
type Entity interface {
	Body
	Kind() Kind
}

// ProjectileState is the wire form of a projectile
type ProjectileState struct {
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
	VX float64 `json:"vx" msgpack:"vx"`
	VY float64 `json:"vy" msgpack:"vy"`
	R  float64 `json:"r" msgpack:"r"`
}

// SparkState is the wire form of a thrust particle
type SparkState struct {
	X   float64 `json:"x" msgpack:"x"`
	Y   float64 `json:"y" msgpack:"y"`
	Age float64 `json:"age" msgpack:"age"`
}

// ActorState is the public state of one actor
type ActorState struct {
	ID             string            `json:"id" msgpack:"id"`
	Name           string            `json:"n" msgpack:"n"`
	Wallet         string            `json:"w,omitempty" msgpack:"w,omitempty"`
	X              float64           `json:"x" msgpack:"x"`
	Y              float64           `json:"y" msgpack:"y"`
	VX             float64           `json:"vx" msgpack:"vx"`
	VY             float64           `json:"vy" msgpack:"vy"`
	Angle          float64           `json:"a" msgpack:"a"`
	R              float64           `json:"r" msgpack:"r"`
	Thrust         bool              `json:"th" msgpack:"th"`
	Dead           bool              `json:"dead" msgpack:"dead"`
	Lives          int               `json:"l" msgpack:"l"`
	Score          int               `json:"sc" msgpack:"sc"`
	FinalScore     int               `json:"fs" msgpack:"fs"`
	Bonuses        int               `json:"bn" msgpack:"bn"`
	Shield         bool              `json:"sh" msgpack:"sh"`
	ShieldRadius   float64           `json:"shr" msgpack:"shr"`
	ShieldProgress float64           `json:"shp" msgpack:"shp"`
	Boosting       bool              `json:"b" msgpack:"b"`
	BoostProgress  float64           `json:"bp" msgpack:"bp"`
	Viewport       Viewport          `json:"vp" msgpack:"vp"`
	Projectiles    []ProjectileState `json:"pr" msgpack:"pr"`
	Sparks         []SparkState      `json:"sp" msgpack:"sp"`
}

// ObstacleState is the wire form of an obstacle
type ObstacleState struct {
	ID      uint64  `json:"id" msgpack:"id"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	VX      float64 `json:"vx" msgpack:"vx"`
	VY      float64 `json:"vy" msgpack:"vy"`
	R       float64 `json:"r" msgpack:"r"`
	Size    string  `json:"s" msgpack:"s"`
	Variant string  `json:"v,omitempty" msgpack:"v,omitempty"`
}

// WorldState is the full snapshot sent every tick
type WorldState struct {
	Tick      uint64          `json:"tick" msgpack:"tick"`
	Actors    []ActorState    `json:"p" msgpack:"p"`
	Obstacles []ObstacleState `json:"o" msgpack:"o"`
}

// LeaderboardEntry is one row of the live leaderboard
type LeaderboardEntry struct {
	Name   string `json:"name" msgpack:"name"`
	Score  int    `json:"score" msgpack:"score"`
	Wallet string `json:"ethereumAddress,omitempty" msgpack:"ethereumAddress,omitempty"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var (
	_ Entity = (*Actor)(nil)
	_ Entity = (*Projectile)(nil)
	_ Entity = (*Obstacle)(nil)
)
