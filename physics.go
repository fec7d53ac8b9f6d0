package arena

import (
	"errors"
	"math"
	"sync"
)

// BodyID identifies a physics body. Bodies are registered under their
// entity's id so contacts map straight back to the registry.
type BodyID uint64

// Shape selects the collision shape of a body
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeSegment
)

// BodyDef describes a body handed to the engine
type BodyDef struct {
	Shape    Shape
	Position Vec2
	Extent   Vec2    // segment end relative to Position
	Radius   float64 // circle radius, or segment half-thickness
	Velocity Vec2
	Static   bool
	Sensor   bool // reports contacts but never pushes or is pushed
}

// ContactPhase is the edge of a contact signal
type ContactPhase uint8

const (
	ContactBegin ContactPhase = iota
	ContactPersist
	ContactEnd
)

func (p ContactPhase) String() string {
	switch p {
	case ContactBegin:
		return "begin"
	case ContactPersist:
		return "persist"
	case ContactEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Contact is one raw shape-pair signal from the engine
type Contact struct {
	A, B  BodyID
	Phase ContactPhase
}

// Engine is the physics collaborator. Implementations need not be safe for
// concurrent use; PhysicsWorld serializes every call.
type Engine interface {
	Add(id BodyID, def BodyDef) error
	Remove(id BodyID) bool
	Step(dt float64)
	SetVelocity(id BodyID, v Vec2)
	SetPosition(id BodyID, p Vec2)
	SetExtent(id BodyID, extent Vec2)
	Position(id BodyID) (Vec2, bool)
	OnContact(fn func(Contact))
}

// ErrDuplicateBody is returned when a body id is registered twice
var ErrDuplicateBody = errors.New("physics: duplicate body")

// MaxStepDelta caps one step after a stall
const MaxStepDelta = 0.1

// ClampDelta bounds a measured frame delta to a range the engine handles.
// Zero or negative deltas become 0 and advance nothing.
func ClampDelta(dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return math.Min(dt, MaxStepDelta)
}

// PhysicsWorld is the synchronization boundary around the engine. Its mutex
// is the only lock in the simulation: body add, body remove, step and the
// bulk sync all run under it and are serialized relative to each other.
type PhysicsWorld struct {
	mu       sync.Mutex
	engine   Engine
	contacts []Contact
	bodies   map[BodyID]struct{}
}

// NewPhysicsWorld wraps an engine
func NewPhysicsWorld(engine Engine) *PhysicsWorld {
	w := &PhysicsWorld{
		engine: engine,
		bodies: make(map[BodyID]struct{}),
	}
	// invoked from engine.Step, which only runs with w.mu held
	engine.OnContact(func(c Contact) {
		w.contacts = append(w.contacts, c)
	})
	return w
}

// AddBody registers a body. Safe from any goroutine.
func (w *PhysicsWorld) AddBody(id BodyID, def BodyDef) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.engine.Add(id, def); err != nil {
		return err
	}
	w.bodies[id] = struct{}{}
	return nil
}

// RemoveBody unregisters a body; unknown ids are ignored
func (w *PhysicsWorld) RemoveBody(id BodyID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.engine.Remove(id)
	delete(w.bodies, id)
}

// HasBody reports whether id is registered
func (w *PhysicsWorld) HasBody(id BodyID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.bodies[id]
	return ok
}

// BodyCount returns the number of registered bodies
func (w *PhysicsWorld) BodyCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.bodies)
}

// Step advances the engine by a clamped delta and returns the contacts it
// reported along with the delta actually applied.
func (w *PhysicsWorld) Step(dt float64) ([]Contact, float64) {
	dt = ClampDelta(dt)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.contacts = w.contacts[:0]
	w.engine.Step(dt)
	out := make([]Contact, len(w.contacts))
	copy(out, w.contacts)
	return out, dt
}

// Sync runs fn with exclusive access to the engine, for pushing velocities
// before a step and reading positions after it.
func (w *PhysicsWorld) Sync(fn func(e Engine)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.engine)
}

// SetPosition moves a body, e.g. for teleports and respawns
func (w *PhysicsWorld) SetPosition(id BodyID, p Vec2) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.engine.SetPosition(id, p)
}

// SetExtent changes a segment body's end point
func (w *PhysicsWorld) SetExtent(id BodyID, extent Vec2) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.engine.SetExtent(id, extent)
}
