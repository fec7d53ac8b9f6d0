package arena

import (
	"math"
	"math/rand"
	"testing"
)

func TestTerrainDeterministic(t *testing.T) {
	cfg := TerrainConfig{Bounds: Rect{Max: Vec2{2000, 2000}}, Seed: 1234}
	a := GenerateTerrain(cfg, nil).Obstacles()
	b := GenerateTerrain(cfg, nil).Obstacles()

	if len(a) == 0 {
		t.Fatal("expected some obstacles")
	}
	if len(a) != len(b) {
		t.Fatalf("same seed produced %d and %d obstacles", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("obstacle %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestTerrainSeedsDiffer(t *testing.T) {
	bounds := Rect{Max: Vec2{2000, 2000}}
	a := GenerateTerrain(TerrainConfig{Bounds: bounds, Seed: 1}, nil).Obstacles()
	b := GenerateTerrain(TerrainConfig{Bounds: bounds, Seed: 2}, nil).Obstacles()
	if len(a) == len(b) && len(a) > 0 && a[0] == b[0] {
		t.Error("different seeds should give different layouts")
	}
}

func TestTerrainNoOverlap(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		terrain := GenerateTerrain(TerrainConfig{Bounds: Rect{Max: Vec2{3000, 3000}}, Seed: seed}, nil)
		obs := terrain.Obstacles()
		if len(obs) > terrain.Target() {
			t.Errorf("seed %d: placed %d above target %d", seed, len(obs), terrain.Target())
		}
		for i := 0; i < len(obs); i++ {
			for j := i + 1; j < len(obs); j++ {
				min := obs[i].Radius + obs[j].Radius + ObstacleSpacing(obs[i].Radius) + ObstacleSpacing(obs[j].Radius)
				if d := obs[i].Center.Dist(obs[j].Center); d < min {
					t.Errorf("seed %d: obstacles %d and %d are %f apart, need %f", seed, i, j, d, min)
				}
			}
		}
	}
}

func TestTerrainInsideBounds(t *testing.T) {
	bounds := Rect{Max: Vec2{2000, 2000}}
	terrain := GenerateTerrain(TerrainConfig{Bounds: bounds, Seed: 99}, nil)
	for _, o := range terrain.Obstacles() {
		if !bounds.Inset(o.Radius).Contains(o.Center) {
			t.Errorf("obstacle %+v pokes out of the arena", o)
		}
	}
}

func TestTargetObstacleCountClamp(t *testing.T) {
	if n := TargetObstacleCount(100, 1); n != MinObstacles {
		t.Errorf("tiny arena should clamp to %d, got %d", MinObstacles, n)
	}
	if n := TargetObstacleCount(2000*2000, 1); n != 16 {
		t.Errorf("expected 16 for 2000x2000 at 1.0, got %d", n)
	}
	// multiplier far above any tier still respects area/10000
	if n := TargetObstacleCount(1000*1000, 1000); n != 100 {
		t.Errorf("expected ceiling 100, got %d", n)
	}
}

func TestObstacleSpacing(t *testing.T) {
	if s := ObstacleSpacing(30); s != 10 {
		t.Errorf("small obstacle spacing should floor at 10, got %f", s)
	}
	if s := ObstacleSpacing(100); s != 20 {
		t.Errorf("expected 20%% of radius, got %f", s)
	}
}

func TestIsPositionClear(t *testing.T) {
	terrain := &Terrain{
		bounds:    Rect{Max: Vec2{1000, 1000}},
		obstacles: []Circle{{Center: Vec2{500, 500}, Radius: 50}},
	}
	if terrain.IsPositionClear(Vec2{530, 500}, 10) {
		t.Error("point inside an obstacle should not be clear")
	}
	if !terrain.IsPositionClear(Vec2{700, 500}, 10) {
		t.Error("open point should be clear")
	}
	if terrain.IsPositionClear(Vec2{5, 500}, 10) {
		t.Error("circle crossing the arena edge should not be clear")
	}

	terrain.SetBlockers(func(p Vec2, r float64) bool { return p.X > 800 })
	if terrain.IsPositionClear(Vec2{900, 500}, 10) {
		t.Error("blocker should veto the point")
	}
}

func TestSpawnFFAKeepsSeparation(t *testing.T) {
	terrain := GenerateTerrain(TerrainConfig{Bounds: Rect{Max: Vec2{2000, 2000}}, Seed: 7}, nil)
	sel := NewSpawnSelector(terrain, rand.New(rand.NewSource(7)), nil)
	players := []Vec2{{500, 500}, {1500, 1500}, {1000, 1000}}

	for i := 0; i < 50; i++ {
		p, ok := sel.FFA(players)
		if !ok {
			continue
		}
		for _, o := range players {
			if d := p.Dist(o); d < MinSpawnSeparation {
				t.Fatalf("spawn %+v only %f from player %+v", p, d, o)
			}
		}
		if !terrain.IsPositionClear(p, SpawnClearRadius) {
			t.Fatalf("spawn %+v is not clear", p)
		}
	}
}

func TestSpawnTeamUsesHomeArea(t *testing.T) {
	terrain := &Terrain{bounds: Rect{Max: Vec2{4000, 2000}}}
	sel := NewSpawnSelector(terrain, rand.New(rand.NewSource(1)), nil)

	red, _ := sel.Areas().Area(TeamRed)
	blue, _ := sel.Areas().Area(TeamBlue)
	for i := 0; i < 20; i++ {
		if p := sel.SpawnPoint(TeamRed, nil, nil); !red.Contains(p) {
			t.Errorf("red spawn %+v outside red area %+v", p, red)
		}
		if p := sel.SpawnPoint(TeamBlue, nil, nil); !blue.Contains(p) {
			t.Errorf("blue spawn %+v outside blue area %+v", p, blue)
		}
	}
}

func TestSpawnLegacyFallback(t *testing.T) {
	bounds := Rect{Max: Vec2{1000, 1000}}
	terrain := &Terrain{bounds: bounds}
	sel := NewSpawnSelector(terrain, rand.New(rand.NewSource(3)), nil)

	// players everywhere: no candidate is ever far enough away
	var crowd []Vec2
	for x := 0.0; x <= 1000; x += 50 {
		for y := 0.0; y <= 1000; y += 50 {
			crowd = append(crowd, Vec2{x, y})
		}
	}
	p := sel.Legacy(crowd)
	if p.X < 250 || p.X > 750 || p.Y < 250 || p.Y > 750 {
		t.Errorf("fallback should land in the central half, got %+v", p)
	}
}

func TestPlaceObjectiveAvoidsTerrain(t *testing.T) {
	terrain := &Terrain{
		bounds:    Rect{Max: Vec2{2000, 2000}},
		obstacles: []Circle{{Center: Vec2{1000, 1000}, Radius: 80}},
	}
	sel := NewSpawnSelector(terrain, rand.New(rand.NewSource(5)), nil)

	p, ok := sel.PlaceObjective(Vec2{1000, 1000}, 40, 300)
	if !ok {
		t.Fatal("expected a clear spot within the spread")
	}
	if !terrain.IsPositionClear(p, 40) {
		t.Errorf("placed objective at blocked point %+v", p)
	}
}

func TestSpawnTeamFallbackKeepsDistance(t *testing.T) {
	terrain := &Terrain{bounds: Rect{Max: Vec2{2000, 2000}}}
	// the red home strip is the left quarter: block all of it
	terrain.SetBlockers(func(p Vec2, r float64) bool { return p.X < 600 })
	enemy := Vec2{1800, 1800}

	for seed := int64(0); seed < 300; seed++ {
		sel := NewSpawnSelector(terrain, rand.New(rand.NewSource(seed)), quietLogger())
		p := sel.SpawnPoint(TeamRed, []Vec2{enemy}, nil)
		if d := p.Dist(enemy); d < MinSpawnSeparation {
			t.Fatalf("seed %d: fallback spawn %+v only %f from a live player", seed, p, d)
		}
	}
}

func TestSpawnVariedFarthestFromTeammates(t *testing.T) {
	terrain := &Terrain{bounds: Rect{Max: Vec2{2000, 2000}}}
	mates := []Vec2{{200, 200}, {300, 1800}}
	nearest := func(p Vec2) float64 {
		d := math.Inf(1)
		for _, m := range mates {
			d = math.Min(d, p.Dist(m))
		}
		return d
	}

	for seed := int64(1); seed <= 20; seed++ {
		// a twin selector on the same seed draws the same candidates
		twin := NewSpawnSelector(terrain, rand.New(rand.NewSource(seed)), quietLogger())
		var candidates []Vec2
		for i := 0; i < VariedCandidates; i++ {
			c, ok := twin.Team(TeamRed, nil)
			if !ok {
				t.Fatalf("seed %d: open team area should always yield a point", seed)
			}
			candidates = append(candidates, c)
		}

		sel := NewSpawnSelector(terrain, rand.New(rand.NewSource(seed)), quietLogger())
		got, ok := sel.Varied(TeamRed, nil, mates)
		if !ok {
			t.Fatalf("seed %d: no varied spawn", seed)
		}
		found := false
		for _, c := range candidates {
			if c == got {
				found = true
			}
			if nearest(c) > nearest(got) {
				t.Errorf("seed %d: candidate %+v is farther from teammates than chosen %+v", seed, c, got)
			}
		}
		if !found {
			t.Errorf("seed %d: chosen point %+v was not among the candidates", seed, got)
		}
	}
}
