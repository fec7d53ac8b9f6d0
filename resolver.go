package arena

import "log/slog"

// Resolver turns raw contacts into gameplay effects. It only performs
// discrete, idempotent actions; continuous objective state is left to the
// per-tick occupancy pass.
type Resolver struct {
	reg   *Registry
	world *PhysicsWorld
	ev    *events
	log   *slog.Logger
	dt    float64
}

// NewResolver creates a resolver writing events to ev
func NewResolver(reg *Registry, world *PhysicsWorld, ev *events, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{reg: reg, world: world, ev: ev, log: log}
}

// Resolve handles one step's contacts. dt is the step the contacts came
// from, used by continuous effects.
func (r *Resolver) Resolve(contacts []Contact, dt float64) {
	r.dt = dt
	for _, c := range contacts {
		r.handle(c)
	}
}

func (r *Resolver) handle(c Contact) {
	a, ok := r.reg.Get(EntityID(c.A))
	if !ok {
		return
	}
	b, ok := r.reg.Get(EntityID(c.B))
	if !ok {
		return
	}
	if a.Kind() > b.Kind() {
		a, b = b, a
	}

	switch x := a.(type) {
	case *Player:
		switch y := b.(type) {
		case *Projectile:
			if c.Phase != ContactEnd {
				r.projectileHitsPlayer(y, x)
			}
		case *Zone:
			r.log.Debug("zone contact", "player", x.id, "zone", y.id, "phase", c.Phase)
		case *TeleportPad:
			if c.Phase == ContactBegin {
				r.teleport(x, y)
			}
		case *NetProjectile:
			if c.Phase != ContactEnd {
				r.netHitsPlayer(y, x)
			}
		case *Beam:
			if c.Phase != ContactEnd {
				r.beamBurnsPlayer(y, x)
			}
		case *Mine:
			if c.Phase != ContactEnd {
				r.detonate(y, x)
			}
		}
	case *Projectile:
		if c.Phase == ContactEnd {
			return
		}
		switch y := b.(type) {
		case *Obstacle:
			r.projectileHitsStructure(x, y)
		case *Headquarters:
			r.projectileHitsStructure(x, y)
		case *Turret:
			r.projectileHitsStructure(x, y)
		case *DefenseLaser:
			x.Deactivate()
		}
	case *Obstacle:
		switch y := b.(type) {
		case *NetProjectile:
			y.Deactivate()
		case *Beam:
			if c.Phase != ContactEnd {
				r.beamMeetsObstacle(y, x)
			}
		}
	}
}

// projectileHitsPlayer applies damage once: the projectile is deactivated
// before damage lands, so later contacts from it are ignored.
func (r *Resolver) projectileHitsPlayer(proj *Projectile, p *Player) {
	if !proj.Active() || !p.Alive {
		return
	}
	if !hostile(proj.team, proj.OwnerID, p.team, p.id) {
		return
	}
	proj.Deactivate()
	r.DamagePlayer(proj.OwnerID, p, proj.Damage)
}

// DamagePlayer damages p on behalf of attacker and handles the kill. It
// reports whether p died.
func (r *Resolver) DamagePlayer(attacker EntityID, p *Player, dmg int) bool {
	if !p.TakeDamage(dmg) {
		return false
	}
	r.ev.emit(EventDeath, attacker, p.id, p.team, 0)
	if killer, ok := r.reg.Player(attacker); ok && killer != p {
		killer.Kills++
		killer.Score++
		r.ev.emit(EventKill, killer.id, p.id, killer.team, killer.Kills)
	}
	return true
}

type structure interface {
	HasHealth
	Team() TeamID
}

// projectileHitsStructure stops the projectile and damages hostile
// destructible structures.
func (r *Resolver) projectileHitsStructure(proj *Projectile, s structure) {
	if !proj.Active() {
		return
	}
	proj.Deactivate()
	owner := EntityID(0)
	if o, ok := s.(HasOwner); ok {
		owner = o.Owner()
	}
	if owner == proj.OwnerID {
		return
	}
	if s.Team() != TeamNone && s.Team() == proj.team {
		return
	}
	if !s.TakeDamage(proj.Damage) {
		return
	}
	if hq, ok := s.(*Headquarters); ok {
		r.ev.emit(EventHQDestroyed, proj.OwnerID, hq.id, hq.team, 0)
		r.log.Info("headquarters destroyed", "hq", hq.id, "team", hq.team, "by", proj.OwnerID)
	}
}

func (r *Resolver) netHitsPlayer(n *NetProjectile, p *Player) {
	if !n.Active() || !p.Alive || !hostile(n.team, n.OwnerID, p.team, p.id) {
		return
	}
	n.Deactivate()
	p.Root(n.RootTime)
}

func (r *Resolver) beamBurnsPlayer(b *Beam, p *Player) {
	if b.Instant || !b.Active() || !p.Alive || !hostile(b.team, b.OwnerID, p.team, p.id) {
		return
	}
	if !SegmentCircleIntersect(b.Segment(), Circle{p.pos, PlayerRadius + b.Width/2}) {
		return
	}
	if dmg := b.burn(p.id, r.dt); dmg > 0 {
		r.DamagePlayer(b.OwnerID, p, dmg)
	}
}

func (r *Resolver) beamMeetsObstacle(b *Beam, o *Obstacle) {
	if !b.Active() || !o.Active() {
		return
	}
	if b.ShortenTo(o.Circle()) {
		r.world.SetExtent(b.Body(), b.Extent())
	}
}

// detonate blows an armed mine when a hostile player trips it
func (r *Resolver) detonate(m *Mine, trigger *Player) {
	if !m.Armed() || !trigger.Alive || !hostile(m.team, m.OwnerID, trigger.team, trigger.id) {
		return
	}
	m.Deactivate()
	for _, p := range r.reg.Players() {
		if !p.Alive || !hostile(m.team, m.OwnerID, p.team, p.id) {
			continue
		}
		if p.pos.DistSq(m.pos) <= m.BlastRadius*m.BlastRadius {
			r.DamagePlayer(m.OwnerID, p, m.Damage)
		}
	}
}

func (r *Resolver) teleport(p *Player, pad *TeleportPad) {
	if !pad.Active() || !pad.Linked() || !p.Alive || p.TeleportCD > 0 || !pad.CanUse(p) {
		return
	}
	dst, ok := lookup[*TeleportPad](r.reg, pad.Partner)
	if !ok || !dst.Active() {
		return
	}
	p.setPosition(dst.pos)
	p.TeleportCD = TeleportCooldown
	r.world.SetPosition(p.Body(), dst.pos)
}
