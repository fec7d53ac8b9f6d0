package arena

const (
	DefaultCaptureRate     = 0.2 // progress per second, 5s to capture
	DefaultCaptureRequired = 1.0
	KothZoneRadius         = 150.0
	LocationRadius         = 120.0
	FlagRadius             = 25.0
	FlagReturnRadius       = 60.0 // carrier within this of its home flag scores
	WorkshopRadius         = 90.0
	WorkshopCraftTime      = 8.0
	HQRadius               = 70.0
	HQMaxHP                = 1000
)

// ZoneKind distinguishes king-of-the-hill zones from conquest locations
type ZoneKind uint8

const (
	ZoneStrategic ZoneKind = iota
	ZoneKoth
)

func (k ZoneKind) String() string {
	if k == ZoneKoth {
		return "koth"
	}
	return "strategic"
}

// Zone is a capturable circle. Capture state changes only in the per-tick
// occupancy pass, never in contact callbacks.
type Zone struct {
	entityBase
	Type         ZoneKind
	Radius       float64
	Rate         float64 // progress per second while a single occupant captures
	Required     float64 // progress needed to take control
	Progress     float64
	Capturer     EntityID
	CapturerTeam TeamID
	Controller   EntityID
	ControlTeam  TeamID
	holdT        float64 // seconds of control not yet converted to score
}

// NewZone creates a neutral zone
func NewZone(id EntityID, kind ZoneKind, pos Vec2, radius, rate, required float64) *Zone {
	return &Zone{
		entityBase: newBase(id, pos),
		Type:       kind,
		Radius:     radius,
		Rate:       rate,
		Required:   required,
	}
}

func (z *Zone) Kind() Kind { return KindZone }

// Team returns the controlling team
func (z *Zone) Team() TeamID { return z.ControlTeam }

// InRange reports whether a point lies inside the zone
func (z *Zone) InRange(p Vec2) bool {
	return z.pos.DistSq(p) <= z.Radius*z.Radius
}

func (z *Zone) controlledBy(p *Player, byTeam bool) bool {
	if byTeam && p.team != TeamNone {
		return z.ControlTeam == p.team
	}
	return z.Controller == p.id
}

func (z *Zone) sameCapturer(p *Player, byTeam bool) bool {
	if z.Capturer == 0 {
		return false
	}
	if byTeam && p.team != TeamNone {
		return z.CapturerTeam == p.team
	}
	return z.Capturer == p.id
}

// Step applies one tick of the occupancy rules and reports whether control
// changed hands. No occupants stops the capture and clears its progress; a
// single occupant who does not control the zone accrues Rate*dt; two or more
// occupants freeze progress where it is.
func (z *Zone) Step(occupants []*Player, dt float64, byTeam bool) bool {
	switch len(occupants) {
	case 0:
		z.Progress = 0
		z.Capturer = 0
		z.CapturerTeam = TeamNone
		return false
	case 1:
		p := occupants[0]
		if z.controlledBy(p, byTeam) {
			z.Progress = 0
			z.Capturer = 0
			z.CapturerTeam = TeamNone
			return false
		}
		if !z.sameCapturer(p, byTeam) {
			z.Capturer = p.id
			z.CapturerTeam = p.team
			z.Progress = 0
		}
		z.Progress += z.Rate * dt
		if z.Progress >= z.Required {
			z.Controller = p.id
			z.ControlTeam = p.team
			z.Progress = 0
			z.Capturer = 0
			z.CapturerTeam = TeamNone
			z.holdT = 0
			return true
		}
		return false
	default:
		return false
	}
}

// Flag is a team flag (CTF) or the neutral ball (Oddball, team 0)
type Flag struct {
	entityBase
	team    TeamID
	Home    Vec2
	Radius  float64
	Carrier EntityID
	Dropped bool
	holdT   float64
}

// NewFlag creates a flag resting at home
func NewFlag(id EntityID, team TeamID, home Vec2) *Flag {
	return &Flag{
		entityBase: newBase(id, home),
		team:       team,
		Home:       home,
		Radius:     FlagRadius,
	}
}

func (f *Flag) Kind() Kind   { return KindFlag }
func (f *Flag) Team() TeamID { return f.team }

// AtBase reports whether the flag is resting at home
func (f *Flag) AtBase() bool {
	return f.Carrier == 0 && !f.Dropped
}

// IsBall reports whether this is the neutral oddball
func (f *Flag) IsBall() bool { return f.team == TeamNone }

func (f *Flag) pickUp(p *Player) {
	f.Carrier = p.id
	f.Dropped = false
	p.Carrying = f.id
}

func (f *Flag) drop(at Vec2) {
	f.Carrier = 0
	f.Dropped = true
	f.pos = at
}

func (f *Flag) returnHome() {
	f.Carrier = 0
	f.Dropped = false
	f.pos = f.Home
}

// Workshop crafts for its team while friendly players stand in it
type Workshop struct {
	entityBase
	team      TeamID
	Radius    float64
	CraftTime float64
	Progress  float64
}

// NewWorkshop creates an idle workshop
func NewWorkshop(id EntityID, team TeamID, pos Vec2) *Workshop {
	return &Workshop{
		entityBase: newBase(id, pos),
		team:       team,
		Radius:     WorkshopRadius,
		CraftTime:  WorkshopCraftTime,
	}
}

func (w *Workshop) Kind() Kind   { return KindWorkshop }
func (w *Workshop) Team() TeamID { return w.team }

// Headquarters is a team's base structure
type Headquarters struct {
	entityBase
	team   TeamID
	Radius float64
	HP     int
	MaxHP  int
}

// NewHeadquarters creates a full-health HQ
func NewHeadquarters(id EntityID, team TeamID, pos Vec2) *Headquarters {
	return &Headquarters{
		entityBase: newBase(id, pos),
		team:       team,
		Radius:     HQRadius,
		HP:         HQMaxHP,
		MaxHP:      HQMaxHP,
	}
}

func (h *Headquarters) Kind() Kind   { return KindHeadquarters }
func (h *Headquarters) Team() TeamID { return h.team }
func (h *Headquarters) Health() int  { return h.HP }

// TakeDamage returns true when this hit destroyed the HQ
func (h *Headquarters) TakeDamage(dmg int) bool {
	if !h.active || dmg <= 0 {
		return false
	}
	h.HP -= dmg
	if h.HP <= 0 {
		h.HP = 0
		h.Deactivate()
		return true
	}
	return false
}

// ToState conversions

func (z *Zone) ToState() ObjectiveState {
	return ObjectiveState{
		ID:         z.id,
		Kind:       z.Type.String(),
		X:          round1(z.pos.X),
		Y:          round1(z.pos.Y),
		R:          round1(z.Radius),
		Team:       z.ControlTeam,
		Progress:   round1(z.Progress / z.Required * 100),
		Controller: z.Controller,
		Capturer:   z.Capturer,
	}
}

func (f *Flag) ToState() ObjectiveState {
	kind := "flag"
	if f.IsBall() {
		kind = "ball"
	}
	return ObjectiveState{
		ID:      f.id,
		Kind:    kind,
		X:       round1(f.pos.X),
		Y:       round1(f.pos.Y),
		R:       round1(f.Radius),
		Team:    f.team,
		Carrier: f.Carrier,
		AtBase:  f.AtBase(),
	}
}

func (w *Workshop) ToState() ObjectiveState {
	return ObjectiveState{
		ID:       w.id,
		Kind:     "workshop",
		X:        round1(w.pos.X),
		Y:        round1(w.pos.Y),
		R:        round1(w.Radius),
		Team:     w.team,
		Progress: round1(w.Progress / w.CraftTime * 100),
	}
}

func (h *Headquarters) ToState() ObjectiveState {
	return ObjectiveState{
		ID:    h.id,
		Kind:  "hq",
		X:     round1(h.pos.X),
		Y:     round1(h.pos.Y),
		R:     round1(h.Radius),
		Team:  h.team,
		HP:    h.HP,
		MaxHP: h.MaxHP,
	}
}
