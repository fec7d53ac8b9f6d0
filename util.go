package arena

import (
	"math"
	"sync/atomic"
)

// Vec2 is a 2D point or vector in world units
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Add returns v+o
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v*f
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Dot returns the dot product
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Len returns the vector length
func (v Vec2) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// LenSq returns the squared vector length
func (v Vec2) LenSq() float64 { return v.X*v.X + v.Y*v.Y }

// Normalize returns a unit vector, or the zero vector for zero input
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Dist returns the distance between two points
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// DistSq returns the squared distance between two points
func (v Vec2) DistSq(o Vec2) float64 { return v.Sub(o).LenSq() }

// FromAngle returns the unit vector for an angle in radians
func FromAngle(a float64) Vec2 { return Vec2{math.Cos(a), math.Sin(a)} }

// Angle returns the heading of v in radians
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Rect is an axis-aligned rectangle
type Rect struct {
	Min, Max Vec2
}

// Width returns the rectangle width
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the rectangle height
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Area returns the rectangle area
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Center returns the rectangle center
func (r Rect) Center() Vec2 {
	return Vec2{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Inset shrinks the rectangle by d on every side. The result never inverts.
func (r Rect) Inset(d float64) Rect {
	out := Rect{Min: Vec2{r.Min.X + d, r.Min.Y + d}, Max: Vec2{r.Max.X - d, r.Max.Y - d}}
	c := r.Center()
	if out.Min.X > out.Max.X {
		out.Min.X, out.Max.X = c.X, c.X
	}
	if out.Min.Y > out.Max.Y {
		out.Min.Y, out.Max.Y = c.Y, c.Y
	}
	return out
}

// Contains reports whether p lies inside r (edges included)
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ClampPoint moves p inside r
func (r Rect) ClampPoint(p Vec2) Vec2 {
	return Vec2{Clamp(p.X, r.Min.X, r.Max.X), Clamp(p.Y, r.Min.Y, r.Max.Y)}
}

// EntityID identifies an entity for the lifetime of a match. Zero means none.
type EntityID uint64

// IDAllocator hands out match-unique entity ids. Safe for concurrent callers.
type IDAllocator struct {
	last atomic.Uint64
}

// NewIDAllocator creates an allocator whose first id is 1
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns a fresh id; ids are never reused
func (a *IDAllocator) Next() EntityID {
	return EntityID(a.last.Add(1))
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// NormalizeAngle wraps angle to [-PI, PI]
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// round1 rounds to one decimal for compact snapshots
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
