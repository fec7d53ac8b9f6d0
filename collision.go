package arena

import "math"

// Circle is a bounding circle
type Circle struct {
	Center Vec2
	Radius float64
}

// Segment is a line segment from A to B
type Segment struct {
	A, B Vec2
}

// Len returns the segment length
func (s Segment) Len() float64 { return s.A.Dist(s.B) }

// CheckCollision checks if two circles overlap (touching counts)
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	radSum := r1 + r2
	return dx*dx+dy*dy <= radSum*radSum
}

// Overlaps reports whether two circles overlap
func (c Circle) Overlaps(o Circle) bool {
	return CheckCollision(c.Center.X, c.Center.Y, c.Radius, o.Center.X, o.Center.Y, o.Radius)
}

// closestOnSegment returns the point of s nearest to p
func closestOnSegment(s Segment, p Vec2) Vec2 {
	d := s.B.Sub(s.A)
	l2 := d.LenSq()
	if l2 == 0 {
		return s.A
	}
	t := Clamp(p.Sub(s.A).Dot(d)/l2, 0, 1)
	return s.A.Add(d.Scale(t))
}

// SegmentCircleIntersect checks if a segment touches a circle
func SegmentCircleIntersect(s Segment, c Circle) bool {
	return closestOnSegment(s, c.Center).DistSq(c.Center) <= c.Radius*c.Radius
}

// SegmentCircleEntry returns the fraction t in [0,1] along s where it first
// enters c. ok is false when the segment misses the circle. A segment that
// starts inside the circle enters at t=0.
func SegmentCircleEntry(s Segment, c Circle) (t float64, ok bool) {
	d := s.B.Sub(s.A)
	f := s.A.Sub(c.Center)
	a := d.LenSq()
	cc := f.LenSq() - c.Radius*c.Radius
	if cc <= 0 {
		return 0, true
	}
	if a == 0 {
		return 0, false
	}
	b := 2 * f.Dot(d)
	disc := b*b - 4*a*cc
	if disc < 0 {
		return 0, false
	}
	disc = math.Sqrt(disc)
	t1 := (-b - disc) / (2 * a)
	if t1 >= 0 && t1 <= 1 {
		return t1, true
	}
	return 0, false
}
