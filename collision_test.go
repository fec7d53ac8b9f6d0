package arena

import (
	"math"
	"testing"
)

func TestCheckCollision(t *testing.T) {
	// Overlapping circles
	if !CheckCollision(0, 0, 10, 15, 0, 10) {
		t.Error("circles should collide (overlapping)")
	}

	// Touching circles
	if !CheckCollision(0, 0, 10, 20, 0, 10) {
		t.Error("circles should collide (touching)")
	}

	// Non-overlapping circles
	if CheckCollision(0, 0, 10, 25, 0, 10) {
		t.Error("circles should not collide")
	}

	// Same position
	if !CheckCollision(5, 5, 1, 5, 5, 1) {
		t.Error("same position should collide")
	}
}

func TestSegmentCircleIntersect(t *testing.T) {
	s := Segment{A: Vec2{0, 0}, B: Vec2{100, 0}}
	if !SegmentCircleIntersect(s, Circle{Vec2{50, 5}, 10}) {
		t.Error("segment should touch circle near its middle")
	}
	if SegmentCircleIntersect(s, Circle{Vec2{50, 30}, 10}) {
		t.Error("segment should miss circle above it")
	}
	if SegmentCircleIntersect(s, Circle{Vec2{130, 0}, 10}) {
		t.Error("segment should miss circle past its end")
	}
}

func TestSegmentCircleEntry(t *testing.T) {
	s := Segment{A: Vec2{0, 0}, B: Vec2{100, 0}}

	at, ok := SegmentCircleEntry(s, Circle{Vec2{50, 0}, 10})
	if !ok {
		t.Fatal("expected entry")
	}
	if math.Abs(at-0.4) > 1e-9 {
		t.Errorf("expected entry at 0.4, got %f", at)
	}

	at, ok = SegmentCircleEntry(s, Circle{Vec2{0, 0}, 10})
	if !ok || at != 0 {
		t.Errorf("segment starting inside should enter at 0, got %f ok=%v", at, ok)
	}

	if _, ok := SegmentCircleEntry(s, Circle{Vec2{50, 50}, 10}); ok {
		t.Error("expected miss")
	}
}

func TestRectInsetNeverInverts(t *testing.T) {
	r := Rect{Max: Vec2{100, 40}}
	in := r.Inset(30)
	if in.Min.X != 30 || in.Max.X != 70 {
		t.Errorf("unexpected x range [%f, %f]", in.Min.X, in.Max.X)
	}
	if in.Min.Y > in.Max.Y {
		t.Errorf("inset inverted: y range [%f, %f]", in.Min.Y, in.Max.Y)
	}
	if in.Min.Y != 20 || in.Max.Y != 20 {
		t.Errorf("collapsed axis should sit on the center, got [%f, %f]", in.Min.Y, in.Max.Y)
	}
}

func TestNormalizeAngle(t *testing.T) {
	if a := NormalizeAngle(3 * math.Pi); math.Abs(math.Abs(a)-math.Pi) > 1e-9 {
		t.Errorf("3π should wrap to ±π, got %f", a)
	}
	if a := NormalizeAngle(-math.Pi / 2); math.Abs(a+math.Pi/2) > 1e-9 {
		t.Errorf("-π/2 should be unchanged, got %f", a)
	}
}

func TestIDAllocatorNeverReuses(t *testing.T) {
	ids := NewIDAllocator()
	if first := ids.Next(); first != 1 {
		t.Errorf("first id should be 1, got %d", first)
	}
	seen := map[EntityID]bool{}
	for i := 0; i < 100; i++ {
		id := ids.Next()
		if seen[id] {
			t.Fatalf("id %d handed out twice", id)
		}
		seen[id] = true
	}
}

func TestSubsystemSeedsDiffer(t *testing.T) {
	if SubsystemSeed(42, "terrain") == SubsystemSeed(42, "spawn") {
		t.Error("subsystems should get different seeds")
	}
	if SubsystemSeed(42, "terrain") != SubsystemSeed(42, "terrain") {
		t.Error("subsystem seed should be stable")
	}
}
