package arena

import (
	"fmt"
	"math"
	"sort"
)

const (
	// MaxTranslation is the furthest any body moves in one sub-step. Thin
	// geometry is at least this thick, so nothing tunnels through it.
	MaxTranslation = 8.0
	// MaxSubsteps bounds the work of one Step
	MaxSubsteps = 32
)

type body struct {
	def BodyDef
	pos Vec2
	vel Vec2
	ext Vec2
}

func (b *body) radius() float64 { return b.def.Radius }

func (b *body) box() (minX, minY, maxX, maxY float64) {
	r := b.def.Radius
	if b.def.Shape == ShapeSegment {
		end := b.pos.Add(b.ext)
		return math.Min(b.pos.X, end.X) - r, math.Min(b.pos.Y, end.Y) - r,
			math.Max(b.pos.X, end.X) + r, math.Max(b.pos.Y, end.Y) + r
	}
	return b.pos.X - r, b.pos.Y - r, b.pos.X + r, b.pos.Y + r
}

func (b *body) segment() Segment {
	return Segment{A: b.pos, B: b.pos.Add(b.ext)}
}

type pairKey struct {
	a, b BodyID
}

// CircleEngine is a small circle/segment physics engine: velocity
// integration with bounded sub-steps, arena bounds, static push-out and
// edge-triggered contact reporting. It is not safe for concurrent use.
type CircleEngine struct {
	bounds   Rect
	bodies   map[BodyID]*body
	order    []BodyID // ascending, for deterministic iteration
	grid     *SpatialGrid
	touching map[pairKey]struct{}
	listener func(Contact)
	queryBuf []BodyID
}

// NewCircleEngine creates an engine whose bodies stay inside bounds
func NewCircleEngine(bounds Rect) *CircleEngine {
	return &CircleEngine{
		bounds:   bounds,
		bodies:   make(map[BodyID]*body),
		grid:     NewSpatialGrid(bounds),
		touching: make(map[pairKey]struct{}),
	}
}

// OnContact sets the contact listener
func (e *CircleEngine) OnContact(fn func(Contact)) {
	e.listener = fn
}

// Add registers a body
func (e *CircleEngine) Add(id BodyID, def BodyDef) error {
	if _, ok := e.bodies[id]; ok {
		return fmt.Errorf("add body %d: %w", id, ErrDuplicateBody)
	}
	e.bodies[id] = &body{def: def, pos: def.Position, vel: def.Velocity, ext: def.Extent}
	i := sort.Search(len(e.order), func(i int) bool { return e.order[i] >= id })
	e.order = append(e.order, 0)
	copy(e.order[i+1:], e.order[i:])
	e.order[i] = id
	return nil
}

// Remove drops a body and forgets its contacts without reporting an end
func (e *CircleEngine) Remove(id BodyID) bool {
	if _, ok := e.bodies[id]; !ok {
		return false
	}
	delete(e.bodies, id)
	i := sort.Search(len(e.order), func(i int) bool { return e.order[i] >= id })
	if i < len(e.order) && e.order[i] == id {
		e.order = append(e.order[:i], e.order[i+1:]...)
	}
	for k := range e.touching {
		if k.a == id || k.b == id {
			delete(e.touching, k)
		}
	}
	return true
}

// SetVelocity sets a dynamic body's velocity
func (e *CircleEngine) SetVelocity(id BodyID, v Vec2) {
	if b, ok := e.bodies[id]; ok && !b.def.Static {
		b.vel = v
	}
}

// SetPosition teleports a body
func (e *CircleEngine) SetPosition(id BodyID, p Vec2) {
	if b, ok := e.bodies[id]; ok {
		b.pos = p
	}
}

// SetExtent changes a segment's end point
func (e *CircleEngine) SetExtent(id BodyID, ext Vec2) {
	if b, ok := e.bodies[id]; ok {
		b.ext = ext
	}
}

// Position returns a body's position
func (e *CircleEngine) Position(id BodyID) (Vec2, bool) {
	b, ok := e.bodies[id]
	if !ok {
		return Vec2{}, false
	}
	return b.pos, true
}

// Velocity returns a body's velocity
func (e *CircleEngine) Velocity(id BodyID) (Vec2, bool) {
	b, ok := e.bodies[id]
	if !ok {
		return Vec2{}, false
	}
	return b.vel, true
}

// Step integrates all dynamic bodies over dt and reports contact edges once
// per pair: begin for new pairs, persist for pairs touching last step too,
// end for pairs that separated.
func (e *CircleEngine) Step(dt float64) {
	if dt <= 0 {
		return
	}
	maxSpeed := 0.0
	for _, id := range e.order {
		b := e.bodies[id]
		if !b.def.Static {
			maxSpeed = math.Max(maxSpeed, b.vel.Len())
		}
	}
	n := int(math.Ceil(maxSpeed * dt / MaxTranslation))
	if n < 1 {
		n = 1
	} else if n > MaxSubsteps {
		n = MaxSubsteps
	}
	sub := dt / float64(n)

	touched := make(map[pairKey]struct{})
	for i := 0; i < n; i++ {
		e.integrate(sub)
		e.pushOut()
		e.detect(touched)
	}
	e.report(touched)
}

func (e *CircleEngine) integrate(dt float64) {
	for _, id := range e.order {
		b := e.bodies[id]
		if b.def.Static {
			continue
		}
		disp := b.vel.Scale(dt)
		// safety valve when even MaxSubsteps cannot keep up
		if l := disp.Len(); l > MaxTranslation {
			disp = disp.Scale(MaxTranslation / l)
		}
		b.pos = b.pos.Add(disp)

		inner := e.bounds.Inset(b.radius())
		if !inner.Contains(b.pos) {
			clamped := inner.ClampPoint(b.pos)
			if clamped.X != b.pos.X {
				b.vel.X = 0
			}
			if clamped.Y != b.pos.Y {
				b.vel.Y = 0
			}
			b.pos = clamped
		}
	}
}

// pushOut separates solid dynamic circles from solid static circles
func (e *CircleEngine) pushOut() {
	for _, id := range e.order {
		b := e.bodies[id]
		if b.def.Static || b.def.Sensor || b.def.Shape != ShapeCircle {
			continue
		}
		for _, sid := range e.order {
			s := e.bodies[sid]
			if !s.def.Static || s.def.Sensor || s.def.Shape != ShapeCircle {
				continue
			}
			minDist := b.radius() + s.radius()
			d := b.pos.Sub(s.pos)
			if d.LenSq() >= minDist*minDist {
				continue
			}
			n := d.Normalize()
			if n == (Vec2{}) {
				n = Vec2{1, 0}
			}
			b.pos = s.pos.Add(n.Scale(minDist))
			if vn := b.vel.Dot(n); vn < 0 {
				b.vel = b.vel.Sub(n.Scale(vn))
			}
		}
	}
}

func (e *CircleEngine) detect(touched map[pairKey]struct{}) {
	e.grid.Clear()
	for _, id := range e.order {
		minX, minY, maxX, maxY := e.bodies[id].box()
		e.grid.InsertBox(minX, minY, maxX, maxY, id)
	}
	for _, id := range e.order {
		a := e.bodies[id]
		minX, minY, maxX, maxY := a.box()
		e.queryBuf = e.grid.QueryBuf(minX, minY, maxX, maxY, e.queryBuf[:0])
		for _, oid := range e.queryBuf {
			if oid <= id {
				continue
			}
			o := e.bodies[oid]
			if a.def.Static && o.def.Static && !staticPairs(a, o) {
				continue
			}
			if overlaps(a, o) {
				touched[pairKey{id, oid}] = struct{}{}
			}
		}
	}
}

// staticPairs reports whether two static bodies still need contacts: a
// sensor segment against a solid circle, so beams see barriers built
// across them.
func staticPairs(a, b *body) bool {
	if b.def.Shape == ShapeSegment {
		a, b = b, a
	}
	return a.def.Shape == ShapeSegment && a.def.Sensor &&
		b.def.Shape == ShapeCircle && !b.def.Sensor
}

func overlaps(a, b *body) bool {
	switch {
	case a.def.Shape == ShapeCircle && b.def.Shape == ShapeCircle:
		return CheckCollision(a.pos.X, a.pos.Y, a.radius(), b.pos.X, b.pos.Y, b.radius())
	case a.def.Shape == ShapeSegment && b.def.Shape == ShapeCircle:
		return SegmentCircleIntersect(a.segment(), Circle{b.pos, b.radius() + a.radius()})
	case a.def.Shape == ShapeCircle && b.def.Shape == ShapeSegment:
		return SegmentCircleIntersect(b.segment(), Circle{a.pos, a.radius() + b.radius()})
	}
	return false
}

func (e *CircleEngine) report(touched map[pairKey]struct{}) {
	var out []Contact
	for k := range touched {
		phase := ContactBegin
		if _, was := e.touching[k]; was {
			phase = ContactPersist
		}
		out = append(out, Contact{A: k.a, B: k.b, Phase: phase})
	}
	for k := range e.touching {
		if _, still := touched[k]; !still {
			out = append(out, Contact{A: k.a, B: k.b, Phase: ContactEnd})
		}
	}
	e.touching = touched
	if e.listener == nil {
		return
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	for _, c := range out {
		e.listener(c)
	}
}
