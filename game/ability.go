package game

// Shield makes the actor immune to obstacle hits and repels obstacles while active.
// Cooldown starts counting only once the shield drops.
type Shield struct {
	Active   bool
	Timer    float64 // remaining active duration
	Cooldown float64 // remaining cooldown
}

// CanActivate returns true if the shield is ready
func (s *Shield) CanActivate() bool {
	return !s.Active && s.Cooldown <= 0
}

// Activate raises the shield and returns true on success
func (s *Shield) Activate(cfg *Config) bool {
	if !s.CanActivate() {
		return false
	}
	s.Active = true
	s.Timer = cfg.ShieldDuration
	return true
}

// Update ticks the active timer, or the cooldown when idle
func (s *Shield) Update(cfg *Config, dt float64) {
	if s.Active {
		s.Timer -= dt
		if s.Timer <= 0 {
			s.Active = false
			s.Timer = 0
			s.Cooldown = cfg.ShieldCooldown
		}
		return
	}
	if s.Cooldown > 0 {
		s.Cooldown -= dt
		if s.Cooldown < 0 {
			s.Cooldown = 0
		}
	}
}

// Progress returns cooldown recovery in [0,1], 1 meaning ready
func (s *Shield) Progress(cfg *Config) float64 {
	if cfg.ShieldCooldown <= 0 {
		return 1
	}
	return 1 - s.Cooldown/cfg.ShieldCooldown
}

// Boost multiplies thrust and top speed for a short time. When it ends the
// top speed decays back to normal over the slowdown window.
type Boost struct {
	Active   bool
	Timer    float64
	Cooldown float64
	Slowdown float64 // remaining post-boost slowdown
}

// CanActivate returns true if the boost is ready
func (b *Boost) CanActivate() bool {
	return !b.Active && b.Cooldown <= 0
}

// Activate starts the boost and returns true on success
func (b *Boost) Activate(cfg *Config) bool {
	if !b.CanActivate() {
		return false
	}
	b.Active = true
	b.Timer = cfg.BoostDuration
	return true
}

// Update ticks the boost, its cooldown and the slowdown tail
func (b *Boost) Update(cfg *Config, dt float64) {
	if b.Slowdown > 0 {
		b.Slowdown -= dt
		if b.Slowdown < 0 {
			b.Slowdown = 0
		}
	}

	if b.Active {
		b.Timer -= dt
		if b.Timer <= 0 {
			b.Active = false
			b.Timer = 0
			b.Cooldown = cfg.BoostCooldown
			b.Slowdown = cfg.SlowdownDuration
		}
	} else if b.Cooldown > 0 {
		b.Cooldown -= dt
		if b.Cooldown < 0 {
			b.Cooldown = 0
		}
	}
}

// MaxSpeed returns the current speed cap given the boost state
func (b *Boost) MaxSpeed(cfg *Config) float64 {
	if b.Active {
		return cfg.MaxSpeed * cfg.BoostMultiplier
	}
	if b.Slowdown > 0 && cfg.SlowdownDuration > 0 {
		progress := b.Slowdown / cfg.SlowdownDuration
		return cfg.MaxSpeed + cfg.MaxSpeed*(cfg.BoostMultiplier-1)*progress
	}
	return cfg.MaxSpeed
}

// ThrustMultiplier scales acceleration while boosting
func (b *Boost) ThrustMultiplier(cfg *Config) float64 {
	if b.Active {
		return cfg.BoostMultiplier
	}
	return 1
}

// Progress returns cooldown recovery in [0,1], 1 meaning ready
func (b *Boost) Progress(cfg *Config) float64 {
	if cfg.BoostCooldown <= 0 {
		return 1
	}
	return 1 - b.Cooldown/cfg.BoostCooldown
}
