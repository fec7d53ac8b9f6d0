package arena

import "math"

const (
	PlayerRadius      = 20.0
	PlayerMaxHP       = 100
	PlayerAccel       = 600.0 // units/s²
	PlayerMaxSpeed    = 350.0 // units/s
	PlayerFriction    = 0.97  // velocity multiplier per tick
	PlayerBoostMul    = 1.6   // boost speed multiplier
	FireCooldown      = 0.15  // seconds between shots
	MagazineSize      = 30
	ReloadTime        = 1.5 // seconds
	RespawnTime       = 3.0 // seconds before respawn
	TurnSpeed         = 8.0 // radians/s max turn rate
	TeleportCooldown  = 1.0 // seconds before the same player can teleport again
	moveDeadZone      = 50.0
	minSlowThreshold  = 20.0
	defaultSlowThresh = 150.0
)

// Input is the latest control state a client reported for its player
type Input struct {
	Aim     Vec2    `json:"aim"`              // pointer position (world coords)
	Fire    bool    `json:"fire"`             // primary weapon held
	Boost   bool    `json:"boost"`            // boost held
	Utility bool    `json:"utility"`          // utility activation requested
	Thresh  float64 `json:"thresh,omitempty"` // distance threshold for speed modulation
}

// Player is a connected participant's ship
type Player struct {
	entityBase
	Name     string
	Vel      Vec2
	Rotation float64
	HP       int
	MaxHP    int
	team     TeamID
	Kills    int
	Deaths   int
	Score    int
	Alive    bool
	RespawnT float64 // respawn timer remaining

	// weapon
	FireCD  float64
	Ammo    int
	ReloadT float64

	// utility
	Utility   Ability
	UtilityCD float64

	// status
	RootedT    float64  // movement locked while > 0
	TeleportCD float64
	Carrying   EntityID // flag being carried, 0 if none

	input   Input
	spawned bool // placed in the arena at least once
}

// NewPlayer creates a live player at pos
func NewPlayer(id EntityID, name string, team TeamID, pos Vec2) *Player {
	return &Player{
		entityBase: newBase(id, pos),
		Name:       name,
		HP:         PlayerMaxHP,
		MaxHP:      PlayerMaxHP,
		team:       team,
		Alive:      true,
		Ammo:       MagazineSize,
		input:      Input{Aim: pos, Thresh: defaultSlowThresh},
	}
}

func (p *Player) Kind() Kind   { return KindPlayer }
func (p *Player) Team() TeamID { return p.team }
func (p *Player) Health() int  { return p.HP }

// SetInput stores the control state applied on the next update
func (p *Player) SetInput(in Input) {
	p.input = in
}

// Update advances timers and computes the velocity the physics step integrates
func (p *Player) Update(dt float64) {
	if p.FireCD > 0 {
		p.FireCD -= dt
	}
	if p.UtilityCD > 0 {
		p.UtilityCD = math.Max(0, p.UtilityCD-dt)
	}
	if p.TeleportCD > 0 {
		p.TeleportCD -= dt
	}
	if p.ReloadT > 0 {
		p.ReloadT -= dt
		if p.ReloadT <= 0 {
			p.ReloadT = 0
			p.Ammo = MagazineSize
		}
	}
	if !p.Alive {
		p.RespawnT -= dt
		p.Vel = Vec2{}
		return
	}
	if p.RootedT > 0 {
		p.RootedT -= dt
		p.Vel = Vec2{}
		return
	}

	// Only steer when the pointer is far enough away to give a stable angle
	toAim := p.input.Aim.Sub(p.pos)
	if toAim.LenSq() > 25 {
		diff := NormalizeAngle(toAim.Angle() - p.Rotation)
		maxTurn := TurnSpeed * dt
		p.Rotation += Clamp(diff, -maxTurn, maxTurn)
	}

	accel := PlayerAccel * dt
	if p.input.Boost {
		accel *= PlayerBoostMul
	}

	// Distance-based speed modulation: slow down as pointer approaches ship
	dist := toAim.Len()
	thresh := math.Max(p.input.Thresh, minSlowThreshold)
	speedFactor := 1.0
	if dist <= moveDeadZone {
		accel = 0
		speedFactor = 0
	} else if dist < thresh {
		speedFactor = (dist - moveDeadZone) / (thresh - moveDeadZone)
		accel *= speedFactor
	}

	p.Vel = p.Vel.Add(FromAngle(p.Rotation).Scale(accel))

	// Brake harder when the pointer is near the ship so it actually stops
	friction := PlayerFriction
	if speedFactor < 1.0 {
		friction = 0.95 + speedFactor*(PlayerFriction-0.95)
	}
	p.Vel = p.Vel.Scale(friction)

	maxSpd := PlayerMaxSpeed
	if p.input.Boost {
		maxSpd *= PlayerBoostMul
	}
	if speed := p.Vel.Len(); speed > maxSpd {
		p.Vel = p.Vel.Scale(maxSpd / speed)
	}
}

// TakeDamage reduces HP and returns true if this hit killed the player
func (p *Player) TakeDamage(dmg int) bool {
	if !p.Alive || dmg <= 0 {
		return false
	}
	p.HP -= dmg
	if p.HP <= 0 {
		p.HP = 0
		p.Alive = false
		p.RespawnT = RespawnTime
		p.Vel = Vec2{}
		p.Deaths++
		return true
	}
	return false
}

// Heal restores HP up to the maximum
func (p *Player) Heal(amount int) {
	if !p.Alive || amount <= 0 {
		return
	}
	p.HP = min(p.MaxHP, p.HP+amount)
}

// Root locks movement for d seconds
func (p *Player) Root(d float64) {
	if d > p.RootedT {
		p.RootedT = d
	}
}

// ReadyToRespawn reports whether a dead player's timer has run out
func (p *Player) ReadyToRespawn() bool {
	return !p.Alive && p.RespawnT <= 0
}

// Respawn resets the player at pos after death
func (p *Player) Respawn(pos Vec2) {
	p.pos = pos
	p.Vel = Vec2{}
	p.HP = p.MaxHP
	p.Alive = true
	p.FireCD = 0
	p.RespawnT = 0
	p.RootedT = 0
	p.Ammo = MagazineSize
	p.ReloadT = 0
	p.input.Aim = pos
}

// CanFire returns true if the player can fire a projectile this tick
func (p *Player) CanFire() bool {
	return p.Alive && p.input.Fire && p.FireCD <= 0 && p.Ammo > 0 && p.ReloadT <= 0
}

// consumeShot spends one round and starts a reload when the magazine empties
func (p *Player) consumeShot() {
	p.FireCD = FireCooldown
	p.Ammo--
	if p.Ammo <= 0 {
		p.Ammo = 0
		p.ReloadT = ReloadTime
	}
}

// WantsUtility reports whether the player asked for its utility and it is ready
func (p *Player) WantsUtility() bool {
	return p.Alive && p.input.Utility && p.Utility != nil && p.UtilityCD <= 0
}

// Aim returns the unit aim direction
func (p *Player) Aim() Vec2 {
	return FromAngle(p.Rotation)
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	s := PlayerState{
		ID:     p.id,
		Name:   p.Name,
		X:      round1(p.pos.X),
		Y:      round1(p.pos.Y),
		R:      round1(p.Rotation),
		HP:     p.HP,
		MaxHP:  p.MaxHP,
		Team:   p.team,
		Kills:  p.Kills,
		Deaths: p.Deaths,
		Score:  p.Score,
		Ammo:   p.Ammo,
		Alive:  p.Alive,
		Boost:  p.input.Boost,
		Rooted: p.RootedT > 0,
	}
	if p.Utility != nil {
		s.Utility = p.Utility.Name()
		s.UtilityCD = round1(p.UtilityCD)
	}
	return s
}
