package arena

// Kind identifies the concrete variant of an entity
type Kind uint8

const (
	KindPlayer Kind = iota + 1
	KindProjectile
	KindObstacle
	KindZone
	KindFlag
	KindWorkshop
	KindHeadquarters
	KindTurret
	KindTeleportPad
	KindNetProjectile
	KindFieldEffect
	KindBeam
	KindDefenseLaser
	KindMine

	kindCount
)

var kindNames = [kindCount]string{
	KindPlayer:        "player",
	KindProjectile:    "projectile",
	KindObstacle:      "obstacle",
	KindZone:          "zone",
	KindFlag:          "flag",
	KindWorkshop:      "workshop",
	KindHeadquarters:  "headquarters",
	KindTurret:        "turret",
	KindTeleportPad:   "teleport_pad",
	KindNetProjectile: "net_projectile",
	KindFieldEffect:   "field_effect",
	KindBeam:          "beam",
	KindDefenseLaser:  "defense_laser",
	KindMine:          "mine",
}

func (k Kind) String() string {
	if k == 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// TeamID identifies a team. TeamNone is the neutral / free-for-all team.
type TeamID int

const (
	TeamNone TeamID = 0
	TeamRed  TeamID = 1
	TeamBlue TeamID = 2
)

// Entity is the capability set every gameplay object shares.
// Deactivate is one-way: nothing ever becomes active again.
type Entity interface {
	ID() EntityID
	Kind() Kind
	Position() Vec2
	Active() bool
	Deactivate()
	Body() BodyID
}

// HasHealth is implemented by entities that can be damaged
type HasHealth interface {
	Entity
	Health() int
	// TakeDamage applies damage and returns true if this hit destroyed the entity
	TakeDamage(dmg int) bool
}

// HasTeam is implemented by entities bound to a team
type HasTeam interface {
	Entity
	Team() TeamID
}

// HasOwner is implemented by entities created on behalf of a player
type HasOwner interface {
	Entity
	Owner() EntityID
}

// HasLifespan is implemented by entities that expire on their own.
// Age advances the clock and deactivates the entity once it runs out.
type HasLifespan interface {
	Entity
	Remaining() float64
	Age(dt float64)
}

// entityBase carries the fields shared by every variant
type entityBase struct {
	id     EntityID
	pos    Vec2
	active bool
}

func newBase(id EntityID, pos Vec2) entityBase {
	return entityBase{id: id, pos: pos, active: true}
}

func (e *entityBase) ID() EntityID        { return e.id }
func (e *entityBase) Position() Vec2      { return e.pos }
func (e *entityBase) Active() bool        { return e.active }
func (e *entityBase) Deactivate()         { e.active = false }
func (e *entityBase) Body() BodyID        { return BodyID(e.id) }
func (e *entityBase) setPosition(p Vec2) { e.pos = p }

// lifespan is embedded by entities with a finite life. A zero or negative
// initial life means the entity never expires.
type lifespan struct {
	life   float64
	finite bool
}

func newLifespan(seconds float64) lifespan {
	return lifespan{life: seconds, finite: seconds > 0}
}

// Remaining returns seconds left, or +Inf semantics via a negative value for permanent entities
func (l *lifespan) Remaining() float64 {
	if !l.finite {
		return -1
	}
	return l.life
}

// tick reduces life and reports whether it just ran out
func (l *lifespan) tick(dt float64) bool {
	if !l.finite {
		return false
	}
	l.life -= dt
	return l.life <= 0
}

// hostile reports whether two parties are enemies. Team 0 is free-for-all:
// everyone except the entity's own owner is hostile.
func hostile(teamA TeamID, ownerA EntityID, teamB TeamID, idB EntityID) bool {
	if ownerA != 0 && ownerA == idB {
		return false
	}
	if teamA == TeamNone || teamB == TeamNone {
		return true
	}
	return teamA != teamB
}
