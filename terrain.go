package arena

import (
	"log/slog"
	"math"
)

const (
	BaseAreaPerObstacle = 250000.0 // one obstacle per 500x500 at multiplier 1
	AreaPerMaxObstacle  = 10000.0  // hard ceiling on density
	MinObstacles        = 3
	PlacementAttempts   = 50
	MinObstacleRadius   = 30.0
	MaxObstacleRadius   = 90.0
	densityVariation    = 0.2 // overall +-20% on top of the tier jitter
	minSpacing          = 10.0
	spacingFraction     = 0.2
)

// DensityTier is one population class the generator may pick
type DensityTier struct {
	Name       string
	Multiplier float64
	Jitter     float64 // +- fraction applied inside the tier
}

// DensityTiers are the three population classes, sparse to dense
var DensityTiers = [3]DensityTier{
	{Name: "sparse", Multiplier: 0.6, Jitter: 0.1},
	{Name: "normal", Multiplier: 1.0, Jitter: 0.15},
	{Name: "dense", Multiplier: 1.6, Jitter: 0.2},
}

// ObstacleSpacing is the buffer kept around an obstacle of radius r
func ObstacleSpacing(r float64) float64 {
	return math.Max(minSpacing, spacingFraction*r)
}

// TerrainConfig configures one generation run
type TerrainConfig struct {
	Bounds    Rect
	Seed      int64
	MinRadius float64 // defaults to MinObstacleRadius
	MaxRadius float64 // defaults to MaxObstacleRadius
	Margin    float64 // kept clear along the arena edge
}

// Terrain is the static obstacle layout of a match plus the clearance
// predicate every placement routine shares.
type Terrain struct {
	bounds     Rect
	tier       DensityTier
	multiplier float64
	target     int
	obstacles  []Circle
	blockers   func(p Vec2, r float64) bool
}

// TargetObstacleCount converts an arena area and density multiplier into
// the number of obstacles to attempt, clamped to [3, area/10000].
func TargetObstacleCount(area, multiplier float64) int {
	n := int(area / BaseAreaPerObstacle * multiplier)
	if hi := int(area / AreaPerMaxObstacle); n > hi {
		n = hi
	}
	if n < MinObstacles {
		n = MinObstacles
	}
	return n
}

// GenerateTerrain places obstacles deterministically for cfg.Seed. Each
// obstacle gets PlacementAttempts tries; one that finds no room is skipped,
// so the result may hold fewer obstacles than Target.
func GenerateTerrain(cfg TerrainConfig, log *slog.Logger) *Terrain {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MinRadius <= 0 {
		cfg.MinRadius = MinObstacleRadius
	}
	if cfg.MaxRadius < cfg.MinRadius {
		cfg.MaxRadius = math.Max(cfg.MinRadius, MaxObstacleRadius)
	}
	rng := SubsystemRand(cfg.Seed, "terrain")

	tier := DensityTiers[rng.Intn(len(DensityTiers))]
	mult := tier.Multiplier * (1 + randIn(rng, -tier.Jitter, tier.Jitter))
	mult *= 1 + randIn(rng, -densityVariation, densityVariation)

	t := &Terrain{
		bounds:     cfg.Bounds,
		tier:       tier,
		multiplier: mult,
		target:     TargetObstacleCount(cfg.Bounds.Area(), mult),
	}
	t.obstacles = make([]Circle, 0, t.target)

	failed := 0
	for i := 0; i < t.target; i++ {
		placed := false
		for attempt := 0; attempt < PlacementAttempts; attempt++ {
			r := randIn(rng, cfg.MinRadius, cfg.MaxRadius)
			c := Circle{Center: randPointIn(rng, cfg.Bounds.Inset(r+cfg.Margin)), Radius: r}
			if t.spaced(c) {
				t.obstacles = append(t.obstacles, c)
				placed = true
				break
			}
		}
		if !placed {
			failed++
		}
	}
	if failed > 0 {
		log.Warn("terrain placement exhausted",
			"seed", cfg.Seed, "tier", tier.Name, "target", t.target,
			"placed", len(t.obstacles), "skipped", failed)
	}
	log.Debug("terrain generated", "seed", cfg.Seed, "tier", tier.Name,
		"multiplier", mult, "obstacles", len(t.obstacles))
	return t
}

// spaced reports whether c, inflated by its spacing buffer, stays clear of
// every accepted obstacle inflated by its own buffer.
func (t *Terrain) spaced(c Circle) bool {
	for _, o := range t.obstacles {
		min := c.Radius + o.Radius + ObstacleSpacing(c.Radius) + ObstacleSpacing(o.Radius)
		if c.Center.DistSq(o.Center) < min*min {
			return false
		}
	}
	return true
}

// Obstacles returns the generated layout
func (t *Terrain) Obstacles() []Circle {
	return t.obstacles
}

// Target returns the obstacle count the generator aimed for
func (t *Terrain) Target() int { return t.target }

// Tier returns the density class that was picked
func (t *Terrain) Tier() DensityTier { return t.tier }

// Bounds returns the arena bounds
func (t *Terrain) Bounds() Rect { return t.bounds }

// SetBlockers installs an extra source of blocking geometry, such as
// player-built barriers and structures, consulted by IsPositionClear.
func (t *Terrain) SetBlockers(fn func(p Vec2, r float64) bool) {
	t.blockers = fn
}

// IsPositionClear reports whether a circle of radius r at p fits inside the
// arena without touching terrain or any installed blocker.
func (t *Terrain) IsPositionClear(p Vec2, r float64) bool {
	if !t.bounds.Inset(r).Contains(p) {
		return false
	}
	circle := Circle{Center: p, Radius: r}
	for _, o := range t.obstacles {
		if circle.Overlaps(o) {
			return false
		}
	}
	if t.blockers != nil && t.blockers(p, r) {
		return false
	}
	return true
}
