package arena

import (
	"fmt"
	"sort"
)

// Category is the broad family an ability belongs to
type Category uint8

const (
	CategoryField Category = iota
	CategoryEntity
	CategoryBeam
)

// Ability is a closed set of utility definitions. Each concrete type
// carries only what its creation routine needs; the dispatcher switches
// over the concrete types.
type Ability interface {
	Name() string
	Cooldown() float64
	Category() Category
	sealed()
}

// FieldAbility drops an area effect at Range along the aim direction
type FieldAbility struct {
	Label    string
	CD       float64
	Range    float64
	Radius   float64
	DPS      float64 // damage per second to enemies
	HPS      float64 // healing per second to allies
	Duration float64
}

// TurretAbility builds a turret in front of the player
type TurretAbility struct {
	CD           float64
	Offset       float64
	Radius       float64
	Range        float64
	Damage       int
	FireInterval float64
	HP           int
	Duration     float64
}

// BarrierAbility builds a destructible wall in front of the player
type BarrierAbility struct {
	CD       float64
	Offset   float64
	Radius   float64
	HP       int
	Duration float64
}

// NetAbility fires a net that roots the first enemy it touches
type NetAbility struct {
	CD       float64
	Speed    float64
	Radius   float64
	RootTime float64
	Duration float64
}

// MineAbility lays a proximity mine behind the player
type MineAbility struct {
	CD            float64
	Offset        float64
	TriggerRadius float64
	BlastRadius   float64
	Damage        int
	ArmTime       float64
	Duration      float64
}

// TeleportPadAbility places a pad that links to the owner's previous pad
type TeleportPadAbility struct {
	CD       float64
	Offset   float64
	Radius   float64
	Duration float64
}

// DefenseLaserAbility builds a point-defense emplacement
type DefenseLaserAbility struct {
	CD       float64
	Offset   float64
	Radius   float64
	Range    float64
	Interval float64
	Duration float64
}

// BeamAbility fires a beam that stops at the first obstacle
type BeamAbility struct {
	Label    string
	CD       float64
	Range    float64
	Width    float64
	Damage   int     // instant beams: damage per hit
	DPS      float64 // continuous beams: damage per second in contact
	Duration float64
	Instant  bool
}

func (a FieldAbility) Name() string        { return a.Label }
func (a TurretAbility) Name() string       { return "turret" }
func (a BarrierAbility) Name() string      { return "barrier" }
func (a NetAbility) Name() string          { return "net" }
func (a MineAbility) Name() string         { return "mine" }
func (a TeleportPadAbility) Name() string  { return "teleporter" }
func (a DefenseLaserAbility) Name() string { return "defense_laser" }
func (a BeamAbility) Name() string         { return a.Label }

func (a FieldAbility) Cooldown() float64        { return a.CD }
func (a TurretAbility) Cooldown() float64       { return a.CD }
func (a BarrierAbility) Cooldown() float64      { return a.CD }
func (a NetAbility) Cooldown() float64          { return a.CD }
func (a MineAbility) Cooldown() float64         { return a.CD }
func (a TeleportPadAbility) Cooldown() float64  { return a.CD }
func (a DefenseLaserAbility) Cooldown() float64 { return a.CD }
func (a BeamAbility) Cooldown() float64         { return a.CD }

func (FieldAbility) Category() Category        { return CategoryField }
func (TurretAbility) Category() Category       { return CategoryEntity }
func (BarrierAbility) Category() Category      { return CategoryEntity }
func (NetAbility) Category() Category          { return CategoryEntity }
func (MineAbility) Category() Category         { return CategoryEntity }
func (TeleportPadAbility) Category() Category  { return CategoryEntity }
func (DefenseLaserAbility) Category() Category { return CategoryEntity }
func (BeamAbility) Category() Category         { return CategoryBeam }

func (FieldAbility) sealed()        {}
func (TurretAbility) sealed()       {}
func (BarrierAbility) sealed()      {}
func (NetAbility) sealed()          {}
func (MineAbility) sealed()         {}
func (TeleportPadAbility) sealed()  {}
func (DefenseLaserAbility) sealed() {}
func (BeamAbility) sealed()         {}

// abilityCatalog holds the stock utilities by name
var abilityCatalog = map[string]Ability{
	"heal_field": FieldAbility{
		Label: "heal_field", CD: 18, Range: 0, Radius: 150, HPS: 10, Duration: 5,
	},
	"toxic_field": FieldAbility{
		Label: "toxic_field", CD: 14, Range: 250, Radius: 120, DPS: 12, Duration: 4,
	},
	"turret": TurretAbility{
		CD: 20, Offset: 60, Radius: 18, Range: 450, Damage: 10, FireInterval: 0.6, HP: 120, Duration: 20,
	},
	"barrier": BarrierAbility{
		CD: 12, Offset: 70, Radius: 35, HP: 200, Duration: 15,
	},
	"net": NetAbility{
		CD: 10, Speed: 500, Radius: 14, RootTime: 2, Duration: 1.5,
	},
	"mine": MineAbility{
		CD: 8, Offset: -40, TriggerRadius: 30, BlastRadius: 110, Damage: 60, ArmTime: 1, Duration: 45,
	},
	"teleporter": TeleportPadAbility{
		CD: 6, Offset: 0, Radius: 28, Duration: 60,
	},
	"defense_laser": DefenseLaserAbility{
		CD: 22, Offset: 60, Radius: 16, Range: 220, Interval: 0.4, Duration: 15,
	},
	"railgun": BeamAbility{
		Label: "railgun", CD: 9, Range: 1200, Width: 6, Damage: 45, Duration: 0.15, Instant: true,
	},
	"laser_beam": BeamAbility{
		Label: "laser_beam", CD: 12, Range: 600, Width: 10, DPS: 40, Duration: 2,
	},
}

// LookupAbility returns the catalog ability with the given name
func LookupAbility(name string) (Ability, error) {
	a, ok := abilityCatalog[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownAbility)
	}
	return a, nil
}

// AbilityNames lists the catalog in name order
func AbilityNames() []string {
	names := make([]string, 0, len(abilityCatalog))
	for n := range abilityCatalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
