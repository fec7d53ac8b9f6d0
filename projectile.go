package arena

const (
	ProjectileSpeed    = 800.0 // units/s
	ProjectileLifetime = 2.0   // seconds
	ProjectileRadius   = 4.0
	ProjectileDamage   = 20
	ProjectileOffset   = 30.0 // spawn distance from shooter center
)

// Projectile is a bullet. It is deactivated on its first hit so damage lands once.
type Projectile struct {
	entityBase
	lifespan
	OwnerID  EntityID
	team     TeamID
	Vel      Vec2
	Rotation float64
	Damage   int
}

// NewProjectile creates a projectile leaving a player's nose
func NewProjectile(id EntityID, owner *Player) *Projectile {
	dir := owner.Aim()
	return &Projectile{
		entityBase: newBase(id, owner.Position().Add(dir.Scale(ProjectileOffset))),
		lifespan:   newLifespan(ProjectileLifetime),
		OwnerID:    owner.ID(),
		team:       owner.Team(),
		// inherit some of the ship velocity
		Vel:      dir.Scale(ProjectileSpeed).Add(owner.Vel.Scale(0.3)),
		Rotation: owner.Rotation,
		Damage:   ProjectileDamage,
	}
}

// NewTurretProjectile creates a projectile fired by a turret toward dir
func NewTurretProjectile(id EntityID, t *Turret, dir Vec2) *Projectile {
	dir = dir.Normalize()
	return &Projectile{
		entityBase: newBase(id, t.Position().Add(dir.Scale(t.Radius+ProjectileRadius+1))),
		lifespan:   newLifespan(ProjectileLifetime),
		OwnerID:    t.OwnerID,
		team:       t.team,
		Vel:        dir.Scale(ProjectileSpeed),
		Rotation:   dir.Angle(),
		Damage:     t.Damage,
	}
}

func (p *Projectile) Kind() Kind      { return KindProjectile }
func (p *Projectile) Team() TeamID    { return p.team }
func (p *Projectile) Owner() EntityID { return p.OwnerID }

// Age ticks the time-to-live
func (p *Projectile) Age(dt float64) {
	if p.tick(dt) {
		p.Deactivate()
	}
}

// ToState converts to protocol state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:    p.id,
		X:     round1(p.pos.X),
		Y:     round1(p.pos.Y),
		R:     round1(p.Rotation),
		Owner: p.OwnerID,
	}
}
