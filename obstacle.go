package arena

// Obstacle is a static circle that blocks movement, projectiles and beams.
// Terrain obstacles are permanent and indestructible; player-built barriers
// carry an owner, a team, hit points and a lifespan.
type Obstacle struct {
	entityBase
	lifespan
	Radius  float64
	OwnerID EntityID
	team    TeamID
	HP      int // 0 means indestructible
}

// NewObstacle creates a permanent terrain obstacle
func NewObstacle(id EntityID, pos Vec2, radius float64) *Obstacle {
	return &Obstacle{
		entityBase: newBase(id, pos),
		Radius:     radius,
	}
}

// NewBarrier creates a player-built obstacle
func NewBarrier(id EntityID, pos Vec2, radius float64, owner EntityID, team TeamID, hp int, life float64) *Obstacle {
	return &Obstacle{
		entityBase: newBase(id, pos),
		lifespan:   newLifespan(life),
		Radius:     radius,
		OwnerID:    owner,
		team:       team,
		HP:         hp,
	}
}

func (o *Obstacle) Kind() Kind      { return KindObstacle }
func (o *Obstacle) Team() TeamID    { return o.team }
func (o *Obstacle) Owner() EntityID { return o.OwnerID }
func (o *Obstacle) Health() int     { return o.HP }

// Destructible reports whether projectiles can wear the obstacle down
func (o *Obstacle) Destructible() bool {
	return o.OwnerID != 0 && o.HP > 0
}

// TakeDamage wears down a barrier; terrain ignores damage
func (o *Obstacle) TakeDamage(dmg int) bool {
	if !o.Destructible() || !o.active {
		return false
	}
	o.HP -= dmg
	if o.HP <= 0 {
		o.HP = 0
		o.Deactivate()
		return true
	}
	return false
}

// Age counts down a barrier's life
func (o *Obstacle) Age(dt float64) {
	if o.tick(dt) {
		o.Deactivate()
	}
}

// Circle returns the obstacle's bounding circle
func (o *Obstacle) Circle() Circle {
	return Circle{Center: o.pos, Radius: o.Radius}
}

// ToState converts to protocol state
func (o *Obstacle) ToState() ObstacleState {
	return ObstacleState{
		ID:    o.id,
		X:     round1(o.pos.X),
		Y:     round1(o.pos.Y),
		R:     round1(o.Radius),
		Team:  o.team,
		Owner: o.OwnerID,
	}
}
