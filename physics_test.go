package arena

import (
	"errors"
	"testing"
)

func phases(contacts []Contact, a, b BodyID) []ContactPhase {
	var out []ContactPhase
	for _, c := range contacts {
		if c.A == a && c.B == b {
			out = append(out, c.Phase)
		}
	}
	return out
}

func TestEngineBeginPersistEnd(t *testing.T) {
	w := NewPhysicsWorld(NewCircleEngine(testBounds))
	w.AddBody(1, BodyDef{Position: Vec2{100, 100}, Radius: 10, Velocity: Vec2{60, 0}})
	w.AddBody(2, BodyDef{Position: Vec2{125, 100}, Radius: 10, Static: true, Sensor: true})

	contacts, _ := w.Step(0.1) // moves to 106: distance 19
	if got := phases(contacts, 1, 2); len(got) != 1 || got[0] != ContactBegin {
		t.Fatalf("expected one begin, got %v", got)
	}

	contacts, _ = w.Step(0.1) // 112: distance 13
	if got := phases(contacts, 1, 2); len(got) != 1 || got[0] != ContactPersist {
		t.Fatalf("expected one persist, got %v", got)
	}

	w.SetPosition(1, Vec2{500, 500})
	w.Sync(func(e Engine) { e.SetVelocity(1, Vec2{}) })
	contacts, _ = w.Step(0.1)
	if got := phases(contacts, 1, 2); len(got) != 1 || got[0] != ContactEnd {
		t.Fatalf("expected one end, got %v", got)
	}

	contacts, _ = w.Step(0.1)
	if got := phases(contacts, 1, 2); len(got) != 0 {
		t.Errorf("expected silence after end, got %v", got)
	}
}

func TestEngineNoTunnelling(t *testing.T) {
	w := NewPhysicsWorld(NewCircleEngine(testBounds))
	// 2000 u/s covers 200 units in one 0.1s step, far more than the wall is thick
	w.AddBody(1, BodyDef{Position: Vec2{100, 500}, Radius: 4, Velocity: Vec2{2000, 0}, Sensor: true})
	w.AddBody(2, BodyDef{Position: Vec2{200, 500}, Radius: 5, Static: true})

	contacts, _ := w.Step(0.1)
	if got := phases(contacts, 1, 2); len(got) == 0 || got[0] != ContactBegin {
		t.Errorf("fast body should still touch the thin wall, got %v", got)
	}
}

func TestEnginePushOut(t *testing.T) {
	e := NewCircleEngine(testBounds)
	w := NewPhysicsWorld(e)
	w.AddBody(1, BodyDef{Position: Vec2{100, 500}, Radius: 20, Velocity: Vec2{300, 0}})
	w.AddBody(2, BodyDef{Position: Vec2{200, 500}, Radius: 50, Static: true})

	for i := 0; i < 10; i++ {
		w.Step(0.05)
	}
	pos, _ := e.Position(1)
	if d := pos.Dist(Vec2{200, 500}); d < 70-1e-6 {
		t.Errorf("solid body should stay outside the obstacle, distance %f", d)
	}
}

func TestEngineBoundsClamp(t *testing.T) {
	e := NewCircleEngine(Rect{Max: Vec2{1000, 1000}})
	w := NewPhysicsWorld(e)
	w.AddBody(1, BodyDef{Position: Vec2{990, 500}, Radius: 20, Velocity: Vec2{500, 0}})
	w.Step(0.1)

	pos, _ := e.Position(1)
	if pos.X > 980 {
		t.Errorf("body should stop at the arena edge, x=%f", pos.X)
	}
	if v, _ := e.Velocity(1); v.X != 0 {
		t.Errorf("velocity into the wall should be cleared, got %f", v.X)
	}
}

func TestWorldClampsDelta(t *testing.T) {
	w := NewPhysicsWorld(NewCircleEngine(testBounds))
	if _, dt := w.Step(5); dt != MaxStepDelta {
		t.Errorf("stall delta should clamp to %f, got %f", MaxStepDelta, dt)
	}
	if _, dt := w.Step(-1); dt != 0 {
		t.Errorf("negative delta should clamp to 0, got %f", dt)
	}
}

func TestWorldZeroDeltaMovesNothing(t *testing.T) {
	w := NewPhysicsWorld(NewCircleEngine(testBounds))
	w.AddBody(1, BodyDef{Position: Vec2{100, 100}, Radius: 10, Velocity: Vec2{600, 0}})

	if _, dt := w.Step(0); dt != 0 {
		t.Errorf("zero delta should stay 0, got %f", dt)
	}
	var pos Vec2
	w.Sync(func(e Engine) { pos, _ = e.Position(1) })
	if pos != (Vec2{100, 100}) {
		t.Errorf("body moved without time passing, at %+v", pos)
	}
}

func TestWorldDuplicateBody(t *testing.T) {
	w := NewPhysicsWorld(NewCircleEngine(testBounds))
	if err := w.AddBody(1, BodyDef{Radius: 1}); err != nil {
		t.Fatal(err)
	}
	if err := w.AddBody(1, BodyDef{Radius: 1}); !errors.Is(err, ErrDuplicateBody) {
		t.Errorf("expected ErrDuplicateBody, got %v", err)
	}
	if w.BodyCount() != 1 {
		t.Errorf("expected 1 body, got %d", w.BodyCount())
	}
	w.RemoveBody(1)
	w.RemoveBody(1)
	if w.HasBody(1) {
		t.Error("body should be gone")
	}
}

func TestRemovedBodyReportsNoEnd(t *testing.T) {
	w := NewPhysicsWorld(NewCircleEngine(testBounds))
	w.AddBody(1, BodyDef{Position: Vec2{100, 100}, Radius: 10})
	w.AddBody(2, BodyDef{Position: Vec2{105, 100}, Radius: 10, Static: true, Sensor: true})
	w.Step(0.01)

	w.RemoveBody(1)
	contacts, _ := w.Step(0.01)
	if len(contacts) != 0 {
		t.Errorf("removing a body should not report contacts, got %v", contacts)
	}
}

func TestSegmentBodyContact(t *testing.T) {
	w := NewPhysicsWorld(NewCircleEngine(testBounds))
	w.AddBody(1, BodyDef{Shape: ShapeSegment, Position: Vec2{0, 500}, Extent: Vec2{800, 0}, Radius: 3, Static: true, Sensor: true})
	w.AddBody(2, BodyDef{Position: Vec2{400, 510}, Radius: 10})

	contacts, _ := w.Step(0.01)
	if got := phases(contacts, 1, 2); len(got) != 1 || got[0] != ContactBegin {
		t.Errorf("circle across the segment should begin contact, got %v", got)
	}
}
