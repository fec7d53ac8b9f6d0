package arena

import (
	"fmt"
	"log/slog"
)

// Activation is one request to use a utility
type Activation struct {
	Player  EntityID
	Team    TeamID
	Origin  Vec2
	Aim     Vec2 // unit direction
	Ability Ability
}

// Dispatcher creates the secondary entity an activation asks for
type Dispatcher struct {
	reg      *Registry
	world    *PhysicsWorld
	ids      *IDAllocator
	terrain  *Terrain
	resolver *Resolver
	log      *slog.Logger
}

// NewDispatcher wires a dispatcher to the match state
func NewDispatcher(reg *Registry, world *PhysicsWorld, ids *IDAllocator, terrain *Terrain, resolver *Resolver, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{reg: reg, world: world, ids: ids, terrain: terrain, resolver: resolver, log: log}
}

// ActivationFor builds the activation for a player's equipped utility
func ActivationFor(p *Player) Activation {
	return Activation{
		Player:  p.id,
		Team:    p.team,
		Origin:  p.pos,
		Aim:     p.Aim(),
		Ability: p.Utility,
	}
}

// Activate starts the ability's cooldown and creates its entity. A missing
// player is a no-op. When a placement-sensitive entity has no room the
// cooldown is restored and ErrPlacementBlocked returned; nothing is created.
func (d *Dispatcher) Activate(act Activation) (Entity, error) {
	p, ok := d.reg.Player(act.Player)
	if !ok || !p.Active() {
		return nil, fmt.Errorf("activate for %d: %w", act.Player, ErrUnknownPlayer)
	}
	if act.Ability == nil {
		return nil, fmt.Errorf("activate for %d: %w", act.Player, ErrUnknownAbility)
	}
	if act.Aim == (Vec2{}) {
		act.Aim = Vec2{1, 0}
	}
	prevCD := p.UtilityCD
	p.UtilityCD = act.Ability.Cooldown()

	e, err := d.create(act)
	if err != nil {
		p.UtilityCD = prevCD
		return nil, err
	}
	if err := register(d.reg, d.world, e); err != nil {
		p.UtilityCD = prevCD
		return nil, err
	}
	d.afterCreate(e)
	return e, nil
}

// create is a total match over the ability variants
func (d *Dispatcher) create(act Activation) (Entity, error) {
	ahead := func(offset float64) Vec2 {
		return act.Origin.Add(act.Aim.Scale(offset))
	}
	switch a := act.Ability.(type) {
	case FieldAbility:
		return &FieldEffect{
			entityBase: newBase(d.ids.Next(), ahead(a.Range)),
			lifespan:   newLifespan(a.Duration),
			OwnerID:    act.Player,
			team:       act.Team,
			Label:      a.Label,
			Radius:     a.Radius,
			DPS:        a.DPS,
			HPS:        a.HPS,
		}, nil

	case TurretAbility:
		pos := ahead(PlayerRadius + a.Offset)
		if !d.terrain.IsPositionClear(pos, a.Radius) {
			return nil, fmt.Errorf("turret at (%.0f,%.0f): %w", pos.X, pos.Y, ErrPlacementBlocked)
		}
		return &Turret{
			entityBase:   newBase(d.ids.Next(), pos),
			lifespan:     newLifespan(a.Duration),
			OwnerID:      act.Player,
			team:         act.Team,
			Radius:       a.Radius,
			Range:        a.Range,
			Damage:       a.Damage,
			FireInterval: a.FireInterval,
			HP:           a.HP,
			Rotation:     act.Aim.Angle(),
		}, nil

	case DefenseLaserAbility:
		pos := ahead(PlayerRadius + a.Offset)
		if !d.terrain.IsPositionClear(pos, a.Radius) {
			return nil, fmt.Errorf("defense laser at (%.0f,%.0f): %w", pos.X, pos.Y, ErrPlacementBlocked)
		}
		return &DefenseLaser{
			entityBase: newBase(d.ids.Next(), pos),
			lifespan:   newLifespan(a.Duration),
			OwnerID:    act.Player,
			team:       act.Team,
			Radius:     a.Radius,
			Range:      a.Range,
			Interval:   a.Interval,
		}, nil

	case BarrierAbility:
		return NewBarrier(d.ids.Next(), ahead(PlayerRadius+a.Offset), a.Radius, act.Player, act.Team, a.HP, a.Duration), nil

	case NetAbility:
		return &NetProjectile{
			entityBase: newBase(d.ids.Next(), ahead(PlayerRadius+a.Radius+1)),
			lifespan:   newLifespan(a.Duration),
			OwnerID:    act.Player,
			team:       act.Team,
			Vel:        act.Aim.Scale(a.Speed),
			Radius:     a.Radius,
			RootTime:   a.RootTime,
		}, nil

	case MineAbility:
		return &Mine{
			entityBase:  newBase(d.ids.Next(), ahead(a.Offset)),
			lifespan:    newLifespan(a.Duration),
			OwnerID:     act.Player,
			team:        act.Team,
			Radius:      a.TriggerRadius,
			BlastRadius: a.BlastRadius,
			Damage:      a.Damage,
			ArmT:        a.ArmTime,
		}, nil

	case TeleportPadAbility:
		return &TeleportPad{
			entityBase: newBase(d.ids.Next(), ahead(a.Offset)),
			lifespan:   newLifespan(a.Duration),
			OwnerID:    act.Player,
			team:       act.Team,
			Radius:     a.Radius,
		}, nil

	case BeamAbility:
		b := &Beam{
			entityBase: newBase(d.ids.Next(), ahead(PlayerRadius+1)),
			lifespan:   newLifespan(a.Duration),
			OwnerID:    act.Player,
			team:       act.Team,
			Dir:        act.Aim.Normalize(),
			Length:     a.Range,
			MaxLength:  a.Range,
			Width:      a.Width,
			DPS:        a.DPS,
			Instant:    a.Instant,
		}
		d.clipBeam(b)
		if a.Instant {
			d.fireInstant(b, a.Damage)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%T: %w", act.Ability, ErrUnknownAbility)
}

// clipBeam shortens a beam to its first obstacle
func (d *Dispatcher) clipBeam(b *Beam) {
	for _, o := range d.terrain.Obstacles() {
		b.ShortenTo(o)
	}
	for _, o := range d.reg.Obstacles() {
		if o.Active() {
			b.ShortenTo(o.Circle())
		}
	}
}

// fireInstant resolves an instant beam's hits right away
func (d *Dispatcher) fireInstant(b *Beam, dmg int) {
	seg := b.Segment()
	for _, p := range d.reg.Players() {
		if !p.Alive || !hostile(b.team, b.OwnerID, p.team, p.id) {
			continue
		}
		if SegmentCircleIntersect(seg, Circle{p.pos, PlayerRadius + b.Width/2}) {
			d.resolver.DamagePlayer(b.OwnerID, p, dmg)
		}
	}
}

// afterCreate links a new teleport pad to the owner's first unlinked pad
func (d *Dispatcher) afterCreate(e Entity) {
	pad, ok := e.(*TeleportPad)
	if !ok {
		return
	}
	for _, other := range d.reg.TeleportPads() {
		if other.id == pad.id || !other.Active() || other.Linked() || other.OwnerID != pad.OwnerID {
			continue
		}
		if pad.Link(other) {
			d.log.Debug("teleport pads linked", "owner", pad.OwnerID, "a", other.id, "b", pad.id)
			return
		}
	}
}
