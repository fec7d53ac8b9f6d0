package arena

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// Registry holds every live entity, keyed by id and indexed by kind.
// Add is safe from any goroutine and may run while the simulation
// goroutine iterates; iteration is weakly consistent. Remove is reserved
// for the simulation goroutine between iteration passes.
type Registry struct {
	byID   sync.Map // EntityID -> Entity
	byKind [kindCount]sync.Map
	counts [kindCount]atomic.Int64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers an entity. Ids are never reused, so a second Add with the
// same id is a bug in the caller.
func (r *Registry) Add(e Entity) error {
	k := e.Kind()
	if k == 0 || k >= kindCount {
		return fmt.Errorf("add entity %d: unknown kind %d", e.ID(), k)
	}
	if _, loaded := r.byID.LoadOrStore(e.ID(), e); loaded {
		return fmt.Errorf("add %s %d: %w", k, e.ID(), ErrDuplicateEntity)
	}
	r.byKind[k].Store(e.ID(), e)
	r.counts[k].Add(1)
	return nil
}

// Remove drops an entity and returns it
func (r *Registry) Remove(id EntityID) (Entity, bool) {
	v, ok := r.byID.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	e := v.(Entity)
	r.byKind[e.Kind()].Delete(id)
	r.counts[e.Kind()].Add(-1)
	return e, true
}

// Get looks up an entity by id
func (r *Registry) Get(id EntityID) (Entity, bool) {
	v, ok := r.byID.Load(id)
	if !ok {
		return nil, false
	}
	return v.(Entity), true
}

// Count returns the number of entities of a kind
func (r *Registry) Count(kind Kind) int {
	if kind == 0 || kind >= kindCount {
		return 0
	}
	return int(r.counts[kind].Load())
}

// Len returns the total number of entities
func (r *Registry) Len() int {
	n := 0
	for k := Kind(1); k < kindCount; k++ {
		n += r.Count(k)
	}
	return n
}

// Range calls fn for each entity of a kind until fn returns false
func (r *Registry) Range(kind Kind, fn func(Entity) bool) {
	if kind == 0 || kind >= kindCount {
		return
	}
	r.byKind[kind].Range(func(_, v any) bool {
		return fn(v.(Entity))
	})
}

// AllOf returns a snapshot of every entity of a kind, ordered by id
func (r *Registry) AllOf(kind Kind) []Entity {
	out := make([]Entity, 0, r.Count(kind))
	r.Range(kind, func(e Entity) bool {
		out = append(out, e)
		return true
	})
	slices.SortFunc(out, func(a, b Entity) int {
		return cmpID(a.ID(), b.ID())
	})
	return out
}

// All returns a snapshot of every entity, ordered by id
func (r *Registry) All() []Entity {
	out := make([]Entity, 0, r.Len())
	r.byID.Range(func(_, v any) bool {
		out = append(out, v.(Entity))
		return true
	})
	slices.SortFunc(out, func(a, b Entity) int {
		return cmpID(a.ID(), b.ID())
	})
	return out
}

func cmpID(a, b EntityID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// allOf returns the entities of a kind as their concrete type
func allOf[T Entity](r *Registry, kind Kind) []T {
	es := r.AllOf(kind)
	out := make([]T, 0, len(es))
	for _, e := range es {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// lookup returns the entity with id when it has concrete type T
func lookup[T Entity](r *Registry, id EntityID) (T, bool) {
	var zero T
	e, ok := r.Get(id)
	if !ok {
		return zero, false
	}
	t, ok := e.(T)
	return t, ok
}

// WithCapability returns every entity implementing T, e.g. HasHealth,
// ordered by id.
func WithCapability[T any](r *Registry) []T {
	var out []T
	for _, e := range r.All() {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

func (r *Registry) Player(id EntityID) (*Player, bool) { return lookup[*Player](r, id) }

func (r *Registry) Players() []*Player           { return allOf[*Player](r, KindPlayer) }
func (r *Registry) Projectiles() []*Projectile   { return allOf[*Projectile](r, KindProjectile) }
func (r *Registry) Obstacles() []*Obstacle       { return allOf[*Obstacle](r, KindObstacle) }
func (r *Registry) Zones() []*Zone               { return allOf[*Zone](r, KindZone) }
func (r *Registry) Flags() []*Flag               { return allOf[*Flag](r, KindFlag) }
func (r *Registry) Workshops() []*Workshop       { return allOf[*Workshop](r, KindWorkshop) }
func (r *Registry) Headquarters() []*Headquarters { return allOf[*Headquarters](r, KindHeadquarters) }
func (r *Registry) Turrets() []*Turret           { return allOf[*Turret](r, KindTurret) }
func (r *Registry) TeleportPads() []*TeleportPad { return allOf[*TeleportPad](r, KindTeleportPad) }
func (r *Registry) Nets() []*NetProjectile       { return allOf[*NetProjectile](r, KindNetProjectile) }
func (r *Registry) Fields() []*FieldEffect       { return allOf[*FieldEffect](r, KindFieldEffect) }
func (r *Registry) Beams() []*Beam               { return allOf[*Beam](r, KindBeam) }
func (r *Registry) Lasers() []*DefenseLaser      { return allOf[*DefenseLaser](r, KindDefenseLaser) }
func (r *Registry) Mines() []*Mine               { return allOf[*Mine](r, KindMine) }
