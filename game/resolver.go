package game

// resolveCollisions runs the cross-entity rules for one tick, after every entity
// has integrated. Actors are visited in join order and obstacles in creation
// order so a fixed seed always produces the same outcome.
//
// Destroyed obstacles are tombstoned (Alive=false) and their replacements are
// appended; each inner loop walks the slice as it stood when that loop began, so
// a later pairing in the same pass sees earlier splits. Tombstones are compacted
// once at the end. Detection is brute force over all pairs.
func (w *World) resolveCollisions(actors []*Actor) []Event {
	var events []Event
	for _, a := range actors {
		if a.Dead {
			continue
		}
		for _, p := range a.Projectiles {
			if !p.Active() {
				continue
			}
			events = w.projectileVsObstacles(a, p, events)
			if !p.Active() {
				continue
			}
			events = w.projectileVsActors(a, p, actors, events)
		}
		events = w.actorVsObstacles(a, events)
	}
	w.compactObstacles()
	return events
}

// projectileVsObstacles consumes the projectile on the first obstacle it touches.
// Bonus obstacles absorb the shot without being destroyed.
func (w *World) projectileVsObstacles(shooter *Actor, p *Projectile, events []Event) []Event {
	cfg := &w.cfg
	n := len(w.obstacles)
	for i := 0; i < n; i++ {
		o := w.obstacles[i]
		if !o.Alive || !Overlaps(p, o) {
			continue
		}
		p.Deactivate()
		if o.Tier == TierBonus {
			return events
		}

		o.Alive = false
		children := o.Split(cfg, w.rng)
		for _, c := range children {
			w.AddObstacle(c)
		}
		if o.Tier == TierMedium && len(children) > 0 && w.rng.Float64() < cfg.BonusSpawnChance {
			w.AddObstacle(NewBonusObstacle(cfg, w.rng, o.Pos, ""))
		}

		points := cfg.TierScore(o.Tier)
		shooter.AddScore(points)
		events = append(events, Event{
			Kind:    EventObstacleDestroyed,
			ActorID: shooter.ID,
			Pos:     p.Pos,
			Points:  points,
		})

		if o.Tier == TierLarge {
			w.spawnLarge()
		}
		return events
	}
	return events
}

// projectileVsActors consumes the projectile on the first other living actor it
// touches. Shots cost no lives; they can only knock a held bonus loose.
func (w *World) projectileVsActors(shooter *Actor, p *Projectile, actors []*Actor, events []Event) []Event {
	for _, target := range actors {
		if target.ID == shooter.ID || target.Dead || !Overlaps(p, target) {
			continue
		}
		p.Deactivate()
		if !target.Shield.Active {
			events = w.maybeEjectBonus(target, events)
		}
		return events
	}
	return events
}

// actorVsObstacles handles ship contact: bonuses are always collected, a raised
// shield repels everything else, otherwise the ship takes a hit.
func (w *World) actorVsObstacles(a *Actor, events []Event) []Event {
	cfg := &w.cfg
	n := len(w.obstacles)
	for i := 0; i < n; i++ {
		o := w.obstacles[i]
		if !o.Alive || !Overlaps(a, o) {
			continue
		}
		switch {
		case o.Tier == TierBonus:
			reward := cfg.BonusReward(o.Variant)
			a.AddScore(reward)
			a.CollectBonus()
			o.Alive = false
			events = append(events, Event{
				Kind:    EventBonusCollected,
				ActorID: a.ID,
				Pos:     o.Pos,
				Points:  reward,
			})
		case a.Shield.Active:
			w.repel(a, o)
		default:
			res := a.Hit()
			if res.Died {
				return events
			}
			events = w.maybeEjectBonus(a, events)
		}
	}
	return events
}

// repel bounces an obstacle off a shielded actor and moves it clear of the shield
func (w *World) repel(a *Actor, o *Obstacle) {
	cfg := &w.cfg
	d := o.Pos.Sub(a.Pos)
	dist := d.Len()
	var dir Vec2
	if dist > 1e-9 {
		dir = d.Scale(1 / dist)
	} else {
		dir = FromAngle(a.Angle)
	}

	vel := dir.Scale(cfg.ObstacleSpeed)
	if speed := vel.Len(); speed > cfg.ObstacleSpeed {
		vel = vel.Scale(cfg.ObstacleSpeed / speed)
	}
	o.SetVelocity(vel)

	clear := a.Pos.Add(dir.Scale(cfg.ShieldRadius + o.Radius))
	o.Pos = Wrap(clear, cfg.WorldWidth, cfg.WorldHeight)
}

// maybeEjectBonus rolls for a held bonus to fall out behind a damaged actor.
// The dropped bonus is always the lowest variant and its reward is deducted.
func (w *World) maybeEjectBonus(a *Actor, events []Event) []Event {
	cfg := &w.cfg
	if a.Bonuses <= 0 || w.rng.Float64() >= cfg.EjectBonusChance {
		return events
	}
	pos := EjectedBonusPosition(cfg, a.Pos, a.Angle, a.Vel)
	w.AddObstacle(NewBonusObstacle(cfg, w.rng, pos, VariantA))
	a.DropBonus()
	penalty := cfg.BonusReward(VariantA)
	a.DeductScore(penalty)
	return append(events, Event{
		Kind:    EventBonusDropped,
		ActorID: a.ID,
		Pos:     a.Pos,
		Points:  -penalty,
	})
}
