package arena

import "fmt"

// bodyDef describes the physics body that represents e
func bodyDef(e Entity) BodyDef {
	switch v := e.(type) {
	case *Player:
		return BodyDef{Position: v.pos, Velocity: v.Vel, Radius: PlayerRadius}
	case *Projectile:
		return BodyDef{Position: v.pos, Velocity: v.Vel, Radius: ProjectileRadius, Sensor: true}
	case *NetProjectile:
		return BodyDef{Position: v.pos, Velocity: v.Vel, Radius: v.Radius, Sensor: true}
	case *Obstacle:
		return BodyDef{Position: v.pos, Radius: v.Radius, Static: true}
	case *Headquarters:
		return BodyDef{Position: v.pos, Radius: v.Radius, Static: true}
	case *Turret:
		return BodyDef{Position: v.pos, Radius: v.Radius, Static: true}
	case *DefenseLaser:
		return BodyDef{Position: v.pos, Radius: v.Radius, Static: true}
	case *Zone:
		return BodyDef{Position: v.pos, Radius: v.Radius, Static: true, Sensor: true}
	case *Flag:
		return BodyDef{Position: v.pos, Radius: v.Radius, Static: true, Sensor: true}
	case *Workshop:
		return BodyDef{Position: v.pos, Radius: v.Radius, Static: true, Sensor: true}
	case *TeleportPad:
		return BodyDef{Position: v.pos, Radius: v.Radius, Static: true, Sensor: true}
	case *FieldEffect:
		return BodyDef{Position: v.pos, Radius: v.Radius, Static: true, Sensor: true}
	case *Mine:
		return BodyDef{Position: v.pos, Radius: v.Radius, Static: true, Sensor: true}
	case *Beam:
		return BodyDef{Shape: ShapeSegment, Position: v.pos, Extent: v.Extent(), Radius: v.Width / 2, Static: true, Sensor: true}
	}
	return BodyDef{Position: e.Position(), Static: true, Sensor: true}
}

// register adds e to the registry and its body to the world. Either both
// happen or neither does.
func register(reg *Registry, world *PhysicsWorld, e Entity) error {
	if err := reg.Add(e); err != nil {
		return err
	}
	if err := world.AddBody(e.Body(), bodyDef(e)); err != nil {
		reg.Remove(e.ID())
		return fmt.Errorf("register %s %d: %w", e.Kind(), e.ID(), err)
	}
	return nil
}

// unregister removes e from the world and the registry
func unregister(reg *Registry, world *PhysicsWorld, id EntityID) (Entity, bool) {
	e, ok := reg.Remove(id)
	if !ok {
		return nil, false
	}
	world.RemoveBody(e.Body())
	return e, true
}

// sweep removes every inactive entity. The removal set is built in a full
// pass first so no collection changes while it is iterated.
func sweep(reg *Registry, world *PhysicsWorld) []Entity {
	var dead []EntityID
	for _, e := range reg.All() {
		if !e.Active() {
			dead = append(dead, e.ID())
		}
	}
	removed := make([]Entity, 0, len(dead))
	for _, id := range dead {
		if e, ok := unregister(reg, world, id); ok {
			if pad, ok := e.(*TeleportPad); ok {
				pad.unlink(reg)
			}
			removed = append(removed, e)
		}
	}
	return removed
}
