package arena

import (
	"log/slog"
	"math"
	"math/rand"
)

const (
	SpawnClearRadius   = 50.0  // clearance a spawn point needs
	MinSpawnSeparation = 100.0 // distance kept from every live player
	FFASpawnAttempts   = 30
	TeamResamples      = 10
	VariedCandidates   = 5
	LegacyAttempts     = 10
	teamAreaFraction   = 0.25 // each team owns this share of the width
	safePointSamples   = 6
	objectiveAttempts  = 40
)

// TeamAreaManager knows each team's home area and scores safe points in it
type TeamAreaManager struct {
	areas   map[TeamID]Rect
	terrain *Terrain
	rng     *rand.Rand
}

// NewTeamAreaManager splits the arena into a red strip on the left and a
// blue strip on the right.
func NewTeamAreaManager(bounds Rect, terrain *Terrain, rng *rand.Rand) *TeamAreaManager {
	w := bounds.Width() * teamAreaFraction
	inner := bounds.Inset(SpawnClearRadius)
	return &TeamAreaManager{
		areas: map[TeamID]Rect{
			TeamRed:  {Min: inner.Min, Max: Vec2{bounds.Min.X + w, inner.Max.Y}},
			TeamBlue: {Min: Vec2{bounds.Max.X - w, inner.Min.Y}, Max: inner.Max},
		},
		terrain: terrain,
		rng:     rng,
	}
}

// Area returns a team's home area
func (m *TeamAreaManager) Area(team TeamID) (Rect, bool) {
	r, ok := m.areas[team]
	return r, ok
}

// Sample returns a uniform point in the team's area
func (m *TeamAreaManager) Sample(team TeamID) (Vec2, bool) {
	r, ok := m.areas[team]
	if !ok {
		return Vec2{}, false
	}
	return randPointIn(m.rng, r), true
}

// SafePoint samples a handful of points in the team's area and returns the
// one with the most room around it. The score is the gap to the nearest
// terrain obstacle edge.
func (m *TeamAreaManager) SafePoint(team TeamID) (Vec2, bool) {
	if _, ok := m.areas[team]; !ok {
		return Vec2{}, false
	}
	var best Vec2
	bestScore := math.Inf(-1)
	for i := 0; i < safePointSamples; i++ {
		p, _ := m.Sample(team)
		score := math.Inf(1)
		for _, o := range m.terrain.Obstacles() {
			score = math.Min(score, p.Dist(o.Center)-o.Radius)
		}
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	return best, true
}

// SpawnSelector picks spawn points for players and placement points for
// objectives. It is owned by the simulation goroutine.
type SpawnSelector struct {
	bounds  Rect
	terrain *Terrain
	areas   *TeamAreaManager
	rng     *rand.Rand
	log     *slog.Logger
}

// NewSpawnSelector creates a selector drawing from rng
func NewSpawnSelector(terrain *Terrain, rng *rand.Rand, log *slog.Logger) *SpawnSelector {
	if log == nil {
		log = slog.Default()
	}
	return &SpawnSelector{
		bounds:  terrain.Bounds(),
		terrain: terrain,
		areas:   NewTeamAreaManager(terrain.Bounds(), terrain, rng),
		rng:     rng,
		log:     log,
	}
}

// Areas returns the team area manager
func (s *SpawnSelector) Areas() *TeamAreaManager { return s.areas }

func farFromAll(p Vec2, others []Vec2, d float64) bool {
	for _, o := range others {
		if p.DistSq(o) < d*d {
			return false
		}
	}
	return true
}

// FFA returns a clear point at least MinSpawnSeparation from every point in
// players. ok is false when the attempt budget ran out.
func (s *SpawnSelector) FFA(players []Vec2) (Vec2, bool) {
	area := s.bounds.Inset(SpawnClearRadius)
	for i := 0; i < FFASpawnAttempts; i++ {
		p := randPointIn(s.rng, area)
		if s.terrain.IsPositionClear(p, SpawnClearRadius) && farFromAll(p, players, MinSpawnSeparation) {
			return p, true
		}
	}
	return Vec2{}, false
}

// Team runs the team pipeline: the area manager's safe point, then up to
// TeamResamples draws from the team area, then free-for-all selection.
func (s *SpawnSelector) Team(team TeamID, players []Vec2) (Vec2, bool) {
	if p, ok := s.areas.SafePoint(team); ok {
		if s.terrain.IsPositionClear(p, SpawnClearRadius) {
			return p, true
		}
		for i := 0; i < TeamResamples; i++ {
			c, _ := s.areas.Sample(team)
			if s.terrain.IsPositionClear(c, SpawnClearRadius) {
				return c, true
			}
		}
		s.log.Warn("team spawn area exhausted, falling back to free-for-all", "team", team)
	}
	return s.FFA(players)
}

// Varied samples VariedCandidates clear points and keeps the one farthest
// from its nearest teammate. With no teammates the first candidate wins.
// others bounds any free-for-all fallback the same way FFA does.
func (s *SpawnSelector) Varied(team TeamID, others, teammates []Vec2) (Vec2, bool) {
	var best Vec2
	bestDist := -1.0
	for i := 0; i < VariedCandidates; i++ {
		var c Vec2
		var ok bool
		if team != TeamNone {
			c, ok = s.Team(team, others)
		} else {
			c, ok = s.FFA(others)
		}
		if !ok {
			continue
		}
		nearest := math.Inf(1)
		for _, m := range teammates {
			nearest = math.Min(nearest, c.Dist(m))
		}
		if nearest > bestDist {
			best, bestDist = c, nearest
		}
	}
	return best, bestDist >= 0
}

// Legacy is plain rejection sampling over the whole arena. When every
// attempt lands near a player it returns a uniform point from the central
// half of the arena.
func (s *SpawnSelector) Legacy(players []Vec2) Vec2 {
	for i := 0; i < LegacyAttempts; i++ {
		p := randPointIn(s.rng, s.bounds)
		if farFromAll(p, players, MinSpawnSeparation) {
			return p
		}
	}
	c := s.bounds.Center()
	hw, hh := s.bounds.Width()/4, s.bounds.Height()/4
	return randPointIn(s.rng, Rect{Min: Vec2{c.X - hw, c.Y - hh}, Max: Vec2{c.X + hw, c.Y + hh}})
}

// SpawnPoint chooses where a player (re)enters the match. others holds the
// positions of every other live player, teammates those on the same team.
func (s *SpawnSelector) SpawnPoint(team TeamID, others, teammates []Vec2) Vec2 {
	if team != TeamNone {
		if p, ok := s.Varied(team, others, teammates); ok {
			return p
		}
	} else if p, ok := s.FFA(others); ok {
		return p
	}
	s.log.Warn("spawn search exhausted, using legacy placement", "team", team)
	return s.Legacy(others)
}

// PlaceObjective finds a clear point for a circle of radius r, trying near
// first and then points scattered up to spread away from it. When nothing
// fits it returns near.
func (s *SpawnSelector) PlaceObjective(near Vec2, r, spread float64) (Vec2, bool) {
	if s.terrain.IsPositionClear(near, r) {
		return near, true
	}
	for i := 0; i < objectiveAttempts; i++ {
		d := spread * math.Sqrt(s.rng.Float64())
		p := near.Add(FromAngle(randAngle(s.rng)).Scale(d))
		if s.terrain.IsPositionClear(p, r) {
			return p, true
		}
	}
	s.log.Warn("objective placement exhausted", "x", near.X, "y", near.Y, "radius", r)
	return s.bounds.ClampPoint(near), false
}
