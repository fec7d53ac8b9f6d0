package arena

import (
	"fmt"
	"log/slog"
	"math"
)

// objectiveSpread is how far placement may wander from an objective's
// intended spot looking for room.
const objectiveSpread = 250.0

// Spawner populates a fresh match: terrain obstacles, then the objectives
// the mode needs, each placed through the shared clearance predicate.
type Spawner struct {
	reg     *Registry
	world   *PhysicsWorld
	ids     *IDAllocator
	terrain *Terrain
	spawns  *SpawnSelector
	log     *slog.Logger
}

// NewSpawner creates a spawner for one match
func NewSpawner(reg *Registry, world *PhysicsWorld, ids *IDAllocator, terrain *Terrain, spawns *SpawnSelector, log *slog.Logger) *Spawner {
	if log == nil {
		log = slog.Default()
	}
	return &Spawner{reg: reg, world: world, ids: ids, terrain: terrain, spawns: spawns, log: log}
}

// Setup registers the map content for cfg
func (s *Spawner) Setup(cfg MatchConfig) error {
	for _, c := range s.terrain.Obstacles() {
		if err := register(s.reg, s.world, NewObstacle(s.ids.Next(), c.Center, c.Radius)); err != nil {
			return fmt.Errorf("setup obstacles: %w", err)
		}
	}

	bounds := cfg.Bounds()
	center := bounds.Center()
	w, h := bounds.Width(), bounds.Height()

	switch cfg.Mode {
	case ModeCTF:
		for _, team := range []TeamID{TeamRed, TeamBlue} {
			pos := s.place(teamAnchor(bounds, team), FlagRadius+PlayerRadius)
			if err := s.add(NewFlag(s.ids.Next(), team, pos)); err != nil {
				return err
			}
		}
	case ModeOddball:
		pos := s.place(center, FlagRadius+PlayerRadius)
		if err := s.add(NewFlag(s.ids.Next(), TeamNone, pos)); err != nil {
			return err
		}
	case ModeKOTH:
		ring := math.Min(w, h) * 0.25
		for i := 0; i < cfg.KothZones; i++ {
			at := center
			if cfg.KothZones > 1 {
				at = center.Add(FromAngle(2 * math.Pi * float64(i) / float64(cfg.KothZones)).Scale(ring))
			}
			pos := s.place(at, PlayerRadius*2)
			z := NewZone(s.ids.Next(), ZoneKoth, pos, KothZoneRadius, cfg.CaptureRate, cfg.CaptureRequired)
			if err := s.add(z); err != nil {
				return err
			}
		}
	case ModeConquest:
		n := cfg.StrategicLocations
		for i := 0; i < n; i++ {
			at := Vec2{bounds.Min.X + w*float64(i+1)/float64(n+1), center.Y}
			pos := s.place(at, PlayerRadius*2)
			z := NewZone(s.ids.Next(), ZoneStrategic, pos, LocationRadius, cfg.CaptureRate, cfg.CaptureRequired)
			if err := s.add(z); err != nil {
				return err
			}
		}
	case ModeSiege:
		for _, team := range []TeamID{TeamRed, TeamBlue} {
			anchor := teamAnchor(bounds, team)
			hq := s.place(anchor, HQRadius)
			if err := s.add(NewHeadquarters(s.ids.Next(), team, hq)); err != nil {
				return err
			}
			toCenter := center.Sub(hq).Normalize()
			for i := 0; i < cfg.Workshops; i++ {
				at := hq.Add(toCenter.Scale(HQRadius + WorkshopRadius + 80 + float64(i)*2*WorkshopRadius))
				pos := s.place(at, WorkshopRadius/2)
				if err := s.add(NewWorkshop(s.ids.Next(), team, pos)); err != nil {
					return err
				}
			}
		}
	}
	s.log.Info("match content placed", "mode", cfg.Mode, "obstacles", len(s.terrain.Obstacles()),
		"entities", s.reg.Len())
	return nil
}

// teamAnchor is the middle of a team's home strip
func teamAnchor(bounds Rect, team TeamID) Vec2 {
	inset := bounds.Width() * teamAreaFraction / 2
	y := bounds.Center().Y
	if team == TeamBlue {
		return Vec2{bounds.Max.X - inset, y}
	}
	return Vec2{bounds.Min.X + inset, y}
}

func (s *Spawner) place(at Vec2, clearance float64) Vec2 {
	pos, _ := s.spawns.PlaceObjective(at, clearance, objectiveSpread)
	return pos
}

func (s *Spawner) add(e Entity) error {
	if err := register(s.reg, s.world, e); err != nil {
		return fmt.Errorf("setup %s: %w", e.Kind(), err)
	}
	return nil
}
