package arena

import "math"

// Turret is a static gun that shoots at the nearest hostile player in range
type Turret struct {
	entityBase
	lifespan
	OwnerID      EntityID
	team         TeamID
	Radius       float64
	Range        float64
	Damage       int
	FireInterval float64
	FireCD       float64
	HP           int
	Rotation     float64
}

func (t *Turret) Kind() Kind      { return KindTurret }
func (t *Turret) Team() TeamID    { return t.team }
func (t *Turret) Owner() EntityID { return t.OwnerID }
func (t *Turret) Health() int     { return t.HP }

// TakeDamage returns true when this hit destroyed the turret
func (t *Turret) TakeDamage(dmg int) bool {
	if !t.active || dmg <= 0 {
		return false
	}
	t.HP -= dmg
	if t.HP <= 0 {
		t.HP = 0
		t.Deactivate()
		return true
	}
	return false
}

func (t *Turret) Age(dt float64) {
	if t.tick(dt) {
		t.Deactivate()
	}
}

// Update aims at the nearest hostile live player in range. It returns the
// firing direction and whether a shot should be fired this tick.
func (t *Turret) Update(dt float64, players []*Player) (Vec2, bool) {
	if t.FireCD > 0 {
		t.FireCD -= dt
	}
	var target *Player
	bestDist := t.Range * t.Range
	for _, p := range players {
		if !p.Alive || !p.Active() || !hostile(t.team, t.OwnerID, p.team, p.id) {
			continue
		}
		if d2 := t.pos.DistSq(p.pos); d2 <= bestDist {
			bestDist = d2
			target = p
		}
	}
	if target == nil {
		return Vec2{}, false
	}
	dir := target.pos.Sub(t.pos).Normalize()
	t.Rotation = dir.Angle()
	if t.FireCD > 0 {
		return dir, false
	}
	t.FireCD = t.FireInterval
	return dir, true
}

// TeleportPad moves players to its linked partner pad
type TeleportPad struct {
	entityBase
	lifespan
	OwnerID EntityID
	team    TeamID
	Radius  float64
	Partner EntityID // 0 while unlinked
}

func (tp *TeleportPad) Kind() Kind      { return KindTeleportPad }
func (tp *TeleportPad) Team() TeamID    { return tp.team }
func (tp *TeleportPad) Owner() EntityID { return tp.OwnerID }

// Linked reports whether the pad has a partner
func (tp *TeleportPad) Linked() bool { return tp.Partner != 0 }

func (tp *TeleportPad) Age(dt float64) {
	if tp.tick(dt) {
		tp.Deactivate()
	}
}

// Link joins two unlinked pads of the same owner to each other
func (tp *TeleportPad) Link(other *TeleportPad) bool {
	if tp == other || tp.Linked() || other.Linked() || tp.OwnerID != other.OwnerID {
		return false
	}
	tp.Partner = other.id
	other.Partner = tp.id
	return true
}

// unlink clears the partner's back reference so the partner can pair again
func (tp *TeleportPad) unlink(reg *Registry) {
	if tp.Partner == 0 {
		return
	}
	if partner, ok := lookup[*TeleportPad](reg, tp.Partner); ok && partner.Partner == tp.id {
		partner.Partner = 0
	}
	tp.Partner = 0
}

// CanUse reports whether p may ride this pad: its owner or the owner's team
func (tp *TeleportPad) CanUse(p *Player) bool {
	if p.id == tp.OwnerID {
		return true
	}
	return tp.team != TeamNone && tp.team == p.team
}

// NetProjectile roots the first hostile player it touches
type NetProjectile struct {
	entityBase
	lifespan
	OwnerID  EntityID
	team     TeamID
	Vel      Vec2
	Radius   float64
	RootTime float64
}

func (n *NetProjectile) Kind() Kind      { return KindNetProjectile }
func (n *NetProjectile) Team() TeamID    { return n.team }
func (n *NetProjectile) Owner() EntityID { return n.OwnerID }

func (n *NetProjectile) Age(dt float64) {
	if n.tick(dt) {
		n.Deactivate()
	}
}

// FieldEffect is an area that damages enemies and heals allies over time
type FieldEffect struct {
	entityBase
	lifespan
	OwnerID EntityID
	team    TeamID
	Label   string
	Radius  float64
	DPS     float64
	HPS     float64
	dmgAcc  float64
	healAcc float64
}

func (f *FieldEffect) Kind() Kind      { return KindFieldEffect }
func (f *FieldEffect) Team() TeamID    { return f.team }
func (f *FieldEffect) Owner() EntityID { return f.OwnerID }

func (f *FieldEffect) Age(dt float64) {
	if f.tick(dt) {
		f.Deactivate()
	}
}

// Pulse accumulates dt worth of effect and returns the whole points of
// damage and healing to apply this tick.
func (f *FieldEffect) Pulse(dt float64) (dmg, heal int) {
	f.dmgAcc += f.DPS * dt
	f.healAcc += f.HPS * dt
	dmg = int(f.dmgAcc)
	heal = int(f.healAcc)
	f.dmgAcc -= float64(dmg)
	f.healAcc -= float64(heal)
	return dmg, heal
}

// Covers reports whether a player stands inside the field
func (f *FieldEffect) Covers(p *Player) bool {
	return f.pos.DistSq(p.pos) <= f.Radius*f.Radius
}

// Beam is a straight segment from its origin along Dir. Instant beams
// resolve their hits when created; continuous beams damage through contacts.
type Beam struct {
	entityBase
	lifespan
	OwnerID   EntityID
	team      TeamID
	Dir       Vec2
	Length    float64
	MaxLength float64
	Width     float64
	DPS       float64
	Instant   bool
	acc       map[EntityID]float64
}

func (b *Beam) Kind() Kind      { return KindBeam }
func (b *Beam) Team() TeamID    { return b.team }
func (b *Beam) Owner() EntityID { return b.OwnerID }

func (b *Beam) Age(dt float64) {
	if b.tick(dt) {
		b.Deactivate()
	}
}

// Segment returns the beam's current extent
func (b *Beam) Segment() Segment {
	return Segment{A: b.pos, B: b.pos.Add(b.Dir.Scale(b.Length))}
}

// Extent returns the beam end relative to its origin
func (b *Beam) Extent() Vec2 {
	return b.Dir.Scale(b.Length)
}

// ShortenTo clips the beam at the first entry into c. It reports whether
// the beam got shorter.
func (b *Beam) ShortenTo(c Circle) bool {
	t, ok := SegmentCircleEntry(b.Segment(), c)
	if !ok {
		return false
	}
	l := t * b.Length
	if l >= b.Length {
		return false
	}
	b.Length = l
	return true
}

// burn accumulates continuous damage against one target
func (b *Beam) burn(target EntityID, dt float64) int {
	if b.acc == nil {
		b.acc = make(map[EntityID]float64)
	}
	b.acc[target] += b.DPS * dt
	dmg := int(b.acc[target])
	b.acc[target] -= float64(dmg)
	return dmg
}

// DefenseLaser shoots down hostile projectiles within range
type DefenseLaser struct {
	entityBase
	lifespan
	OwnerID  EntityID
	team     TeamID
	Radius   float64
	Range    float64
	Interval float64
	cd       float64
}

func (d *DefenseLaser) Kind() Kind      { return KindDefenseLaser }
func (d *DefenseLaser) Team() TeamID    { return d.team }
func (d *DefenseLaser) Owner() EntityID { return d.OwnerID }

func (d *DefenseLaser) Age(dt float64) {
	if d.tick(dt) {
		d.Deactivate()
	}
}

// Zap deactivates the nearest hostile projectile in range once per
// interval and returns it, or nil.
func (d *DefenseLaser) Zap(dt float64, projectiles []*Projectile) *Projectile {
	if d.cd > 0 {
		d.cd -= dt
		return nil
	}
	var target *Projectile
	best := d.Range * d.Range
	for _, p := range projectiles {
		if !p.Active() || !hostile(p.team, p.OwnerID, d.team, d.OwnerID) {
			continue
		}
		if d2 := d.pos.DistSq(p.pos); d2 <= best {
			best = d2
			target = p
		}
	}
	if target == nil {
		return nil
	}
	target.Deactivate()
	d.cd = d.Interval
	return target
}

// Mine is a proximity mine that arms after a delay
type Mine struct {
	entityBase
	lifespan
	OwnerID     EntityID
	team        TeamID
	Radius      float64 // trigger radius
	BlastRadius float64
	Damage      int
	ArmT        float64
}

func (m *Mine) Kind() Kind      { return KindMine }
func (m *Mine) Team() TeamID    { return m.team }
func (m *Mine) Owner() EntityID { return m.OwnerID }

// Armed reports whether the mine can detonate
func (m *Mine) Armed() bool { return m.active && m.ArmT <= 0 }

func (m *Mine) Age(dt float64) {
	if m.ArmT > 0 {
		m.ArmT = math.Max(0, m.ArmT-dt)
	}
	if m.tick(dt) {
		m.Deactivate()
	}
}

// ToState conversions

func (t *Turret) ToState() UtilityState {
	return UtilityState{ID: t.id, Kind: KindTurret.String(), X: round1(t.pos.X), Y: round1(t.pos.Y),
		R: round1(t.Radius), Rot: round1(t.Rotation), Owner: t.OwnerID, Team: t.team, HP: t.HP}
}

func (tp *TeleportPad) ToState() UtilityState {
	return UtilityState{ID: tp.id, Kind: KindTeleportPad.String(), X: round1(tp.pos.X), Y: round1(tp.pos.Y),
		R: round1(tp.Radius), Owner: tp.OwnerID, Team: tp.team, Link: tp.Partner}
}

func (n *NetProjectile) ToState() UtilityState {
	return UtilityState{ID: n.id, Kind: KindNetProjectile.String(), X: round1(n.pos.X), Y: round1(n.pos.Y),
		R: round1(n.Radius), Rot: round1(n.Vel.Angle()), Owner: n.OwnerID, Team: n.team}
}

func (f *FieldEffect) ToState() UtilityState {
	return UtilityState{ID: f.id, Kind: KindFieldEffect.String(), X: round1(f.pos.X), Y: round1(f.pos.Y),
		R: round1(f.Radius), Owner: f.OwnerID, Team: f.team, Label: f.Label}
}

func (b *Beam) ToState() UtilityState {
	end := b.pos.Add(b.Extent())
	return UtilityState{ID: b.id, Kind: KindBeam.String(), X: round1(b.pos.X), Y: round1(b.pos.Y),
		R: round1(b.Width), Owner: b.OwnerID, Team: b.team, EX: round1(end.X), EY: round1(end.Y)}
}

func (d *DefenseLaser) ToState() UtilityState {
	return UtilityState{ID: d.id, Kind: KindDefenseLaser.String(), X: round1(d.pos.X), Y: round1(d.pos.Y),
		R: round1(d.Radius), Owner: d.OwnerID, Team: d.team}
}

func (m *Mine) ToState() UtilityState {
	return UtilityState{ID: m.id, Kind: KindMine.String(), X: round1(m.pos.X), Y: round1(m.pos.Y),
		R: round1(m.Radius), Owner: m.OwnerID, Team: m.team, Armed: m.ArmT <= 0}
}
