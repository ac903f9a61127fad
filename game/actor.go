package game

import (
	"math"
	"math/rand"
)

// Input is the latest control state sent by a client
type Input struct {
	Left   bool `json:"left"`
	Right  bool `json:"right"`
	Up     bool `json:"up"`
	Shoot  bool `json:"shoot"`
	Shield bool `json:"shield"`
	Boost  bool `json:"boost"`
}

// Viewport is the client's screen size; it has no effect on physics
type Viewport struct {
	Width  int `json:"width" msgpack:"w"`
	Height int `json:"height" msgpack:"h"`
}

// Spark is a cosmetic thrust particle
type Spark struct {
	Pos Vec2
	Vel Vec2
	Age float64
}

// HitResult describes the outcome of Actor.Hit
type HitResult struct {
	ShieldAbsorbed bool
	Died           bool
	Pos            Vec2
}

// Actor is a player ship
type Actor struct {
	ID         string
	Name       string
	Wallet     string
	Pos        Vec2
	Vel        Vec2
	Angle      float64
	Radius     float64
	Lives      int
	Score      int
	FinalScore int
	Bonuses    int // bonus obstacles collected and still held
	FireCD     float64
	Shield     Shield
	Boost      Boost
	Dead       bool
	Input      Input
	Viewport   Viewport

	Projectiles []*Projectile
	Sparks      []Spark

	deathReported bool
}

// NewActor creates a live actor at pos with full lives and zero score
func NewActor(cfg *Config, id, name string, pos Vec2) *Actor {
	return &Actor{
		ID:       id,
		Name:     name,
		Pos:      pos,
		Radius:   cfg.ActorRadius,
		Lives:    cfg.InitialLives,
		Viewport: Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
	}
}

func (a *Actor) Kind() Kind { return KindActor }

// ApplyInput stores the control flags and triggers shield/boost requests
func (a *Actor) ApplyInput(cfg *Config, in Input) {
	if a.Dead {
		return
	}
	a.Input = in
	if in.Shield {
		a.Shield.Activate(cfg)
	}
	if in.Boost {
		a.Boost.Activate(cfg)
	}
}

// Update advances the actor one tick (dt in seconds). fx feeds cosmetic sparks only.
func (a *Actor) Update(cfg *Config, dt float64, fx *rand.Rand) {
	if a.Dead {
		return
	}

	if a.Input.Left {
		a.Angle -= cfg.RotationSpeed * dt
	}
	if a.Input.Right {
		a.Angle += cfg.RotationSpeed * dt
	}

	maxSpd := a.Boost.MaxSpeed(cfg)

	if a.Input.Up {
		accel := cfg.Acceleration * dt * a.Boost.ThrustMultiplier(cfg)
		a.Vel = a.Vel.Add(FromAngle(a.Angle).Scale(accel))
		a.emitSparks(cfg, fx)
	}

	// Friction is defined per reference frame so it does not depend on tick rate
	a.Vel = a.Vel.Scale(math.Pow(cfg.Friction, dt/cfg.FrictionFrame))

	if speed := a.Vel.Len(); speed > maxSpd {
		a.Vel = a.Vel.Scale(maxSpd / speed)
	}

	a.Pos = Wrap(a.Pos.Add(a.Vel.Scale(dt)), cfg.WorldWidth, cfg.WorldHeight)

	if a.FireCD > 0 {
		a.FireCD -= dt
	}

	live := a.Projectiles[:0]
	for _, p := range a.Projectiles {
		p.Integrate(cfg, dt)
		if p.Active() {
			live = append(live, p)
		}
	}
	for i := len(live); i < len(a.Projectiles); i++ {
		a.Projectiles[i] = nil
	}
	a.Projectiles = live

	if a.CanFire() {
		a.Fire(cfg)
	}

	a.updateSparks(cfg, dt)
	a.Shield.Update(cfg, dt)
	a.Boost.Update(cfg, dt)
}

// CanFire returns true if the actor wants to and may fire this tick
func (a *Actor) CanFire() bool {
	return !a.Dead && a.Input.Shoot && a.FireCD <= 0
}

// Fire spawns a projectile and restarts the cooldown
func (a *Actor) Fire(cfg *Config) *Projectile {
	if a.Dead {
		return nil
	}
	p := NewProjectile(cfg, a)
	a.Projectiles = append(a.Projectiles, p)
	a.FireCD = cfg.FireCooldown
	return p
}

func (a *Actor) emitSparks(cfg *Config, fx *rand.Rand) {
	if fx == nil {
		return
	}
	back := a.Pos.Sub(FromAngle(a.Angle).Scale(cfg.SparkDistance))
	for i := 0; i < cfg.SparkCount; i++ {
		spread := (fx.Float64()*cfg.SparkSpread - cfg.SparkSpread/2) * math.Pi / 180
		a.Sparks = append(a.Sparks, Spark{
			Pos: back,
			Vel: FromAngle(a.Angle + spread).Scale(-cfg.SparkSpeed),
		})
	}
}

func (a *Actor) updateSparks(cfg *Config, dt float64) {
	live := a.Sparks[:0]
	for _, s := range a.Sparks {
		s.Age += dt
		if s.Age >= cfg.SparkLifetime {
			continue
		}
		s.Pos = s.Pos.Add(s.Vel.Scale(dt))
		s.Vel = s.Vel.Scale(cfg.SparkSpeedGain)
		live = append(live, s)
	}
	a.Sparks = live
}

// Hit applies an obstacle impact. An active shield absorbs it; otherwise a life
// is lost and the score is frozen once no lives remain.
func (a *Actor) Hit() HitResult {
	if a.Shield.Active {
		return HitResult{ShieldAbsorbed: true}
	}
	if a.Dead {
		return HitResult{Pos: a.Pos}
	}
	a.Lives--
	if a.Lives <= 0 {
		a.Lives = 0
		a.Dead = true
		a.FinalScore = a.Score
	}
	return HitResult{Died: a.Dead, Pos: a.Pos}
}

// AddScore adds points
func (a *Actor) AddScore(points int) {
	a.Score += points
	if a.Score < 0 {
		a.Score = 0
	}
}

// DeductScore removes points without going below zero
func (a *Actor) DeductScore(points int) {
	a.Score -= points
	if a.Score < 0 {
		a.Score = 0
	}
}

// CollectBonus records one more held bonus
func (a *Actor) CollectBonus() {
	a.Bonuses++
}

// DropBonus gives up one held bonus; false if none are held
func (a *Actor) DropBonus() bool {
	if a.Bonuses <= 0 {
		return false
	}
	a.Bonuses--
	return true
}

// Respawn resets the actor in place at pos
func (a *Actor) Respawn(cfg *Config, pos Vec2) {
	a.Pos = pos
	a.Vel = Vec2{}
	a.Angle = 0
	a.Dead = false
	a.Lives = cfg.InitialLives
	a.Projectiles = nil
	a.Sparks = nil
	a.FireCD = 0
	a.Input = Input{}
	a.Shield = Shield{}
	a.Boost = Boost{}
	a.Score = 0
	a.FinalScore = 0
	a.Bonuses = 0
	a.deathReported = false
}

func (a *Actor) Bounds() Circle {
	if a == nil {
		return Circle{R: math.NaN()}
	}
	return Circle{Pos: a.Pos, R: a.Radius}
}

// ToState converts to snapshot state
func (a *Actor) ToState(cfg *Config) ActorState {
	s := ActorState{
		ID:             a.ID,
		Name:           a.Name,
		Wallet:         a.Wallet,
		X:              round1(a.Pos.X),
		Y:              round1(a.Pos.Y),
		VX:             round1(a.Vel.X),
		VY:             round1(a.Vel.Y),
		Angle:          math.Round(a.Angle*100) / 100,
		R:              a.Radius,
		Thrust:         a.Input.Up,
		Dead:           a.Dead,
		Lives:          a.Lives,
		Score:          a.Score,
		FinalScore:     a.FinalScore,
		Bonuses:        a.Bonuses,
		Shield:         a.Shield.Active,
		ShieldRadius:   cfg.ShieldRadius,
		ShieldProgress: a.Shield.Progress(cfg),
		Boosting:       a.Boost.Active,
		BoostProgress:  a.Boost.Progress(cfg),
		Viewport:       a.Viewport,
		Projectiles:    make([]ProjectileState, 0, len(a.Projectiles)),
		Sparks:         make([]SparkState, 0, len(a.Sparks)),
	}
	for _, p := range a.Projectiles {
		if p.Active() {
			s.Projectiles = append(s.Projectiles, p.ToState())
		}
	}
	for _, sp := range a.Sparks {
		s.Sparks = append(s.Sparks, SparkState{X: round1(sp.Pos.X), Y: round1(sp.Pos.Y), Age: sp.Age})
	}
	return s
}
