package game

import "math"

// Projectile is a bullet owned by the actor that fired it
type Projectile struct {
	OwnerID string
	Pos     Vec2
	Vel     Vec2
	Radius  float64
	Life    float64 // seconds remaining
}

// NewProjectile fires from the owner's position along its facing, inheriting its velocity
func NewProjectile(cfg *Config, owner *Actor) *Projectile {
	return &Projectile{
		OwnerID: owner.ID,
		Pos:     owner.Pos,
		Vel:     FromAngle(owner.Angle).Scale(cfg.ProjectileSpeed).Add(owner.Vel),
		Radius:  cfg.ProjectileRadius,
		Life:    cfg.ProjectileLifetime,
	}
}

func (p *Projectile) Kind() Kind { return KindProjectile }

// Integrate moves the projectile one tick and burns lifetime
func (p *Projectile) Integrate(cfg *Config, dt float64) {
	p.Pos = Wrap(p.Pos.Add(p.Vel.Scale(dt)), cfg.WorldWidth, cfg.WorldHeight)
	p.Life -= dt
}

// Active reports whether the projectile still has lifetime left
func (p *Projectile) Active() bool {
	return p.Life > 0
}

// Deactivate expires the projectile so it is pruned on the next pass
func (p *Projectile) Deactivate() {
	p.Life = 0
}

func (p *Projectile) Bounds() Circle {
	if p == nil {
		return Circle{R: math.NaN()}
	}
	return Circle{Pos: p.Pos, R: p.Radius}
}

// ToState converts to snapshot state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		X:  round1(p.Pos.X),
		Y:  round1(p.Pos.Y),
		VX: round1(p.Vel.X),
		VY: round1(p.Vel.Y),
		R:  p.Radius,
	}
}
