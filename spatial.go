package arena

import "math"

// SpatialCellSize is ~2x the largest moving body radius
const SpatialCellSize = 80.0

// SpatialGrid is a fixed-size grid for broad-phase collision queries
type SpatialGrid struct {
	cols, rows int
	origin     Vec2
	cells      [][]BodyID
}

// NewSpatialGrid creates a grid covering bounds
func NewSpatialGrid(bounds Rect) *SpatialGrid {
	cols := int(math.Ceil(bounds.Width()/SpatialCellSize)) + 1
	rows := int(math.Ceil(bounds.Height()/SpatialCellSize)) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &SpatialGrid{
		cols:   cols,
		rows:   rows,
		origin: bounds.Min,
		cells:  make([][]BodyID, cols*rows),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cellRange(minX, minY, maxX, maxY float64) (int, int, int, int) {
	clampCol := func(v float64) int {
		c := int((v - g.origin.X) / SpatialCellSize)
		if c < 0 {
			return 0
		}
		if c >= g.cols {
			return g.cols - 1
		}
		return c
	}
	clampRow := func(v float64) int {
		r := int((v - g.origin.Y) / SpatialCellSize)
		if r < 0 {
			return 0
		}
		if r >= g.rows {
			return g.rows - 1
		}
		return r
	}
	return clampCol(minX), clampRow(minY), clampCol(maxX), clampRow(maxY)
}

// InsertBox adds a body to all cells overlapping the given bounding box
func (g *SpatialGrid) InsertBox(minX, minY, maxX, maxY float64, id BodyID) {
	c0, r0, c1, r1 := g.cellRange(minX, minY, maxX, maxY)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			idx := r*g.cols + c
			g.cells[idx] = append(g.cells[idx], id)
		}
	}
}

// InsertCircle adds a body to all cells overlapping its bounding box
func (g *SpatialGrid) InsertCircle(p Vec2, radius float64, id BodyID) {
	g.InsertBox(p.X-radius, p.Y-radius, p.X+radius, p.Y+radius, id)
}

// QueryBuf appends ids in cells overlapping the box to buf, avoiding per-call
// allocation. Bodies spanning several cells appear more than once.
func (g *SpatialGrid) QueryBuf(minX, minY, maxX, maxY float64, buf []BodyID) []BodyID {
	c0, r0, c1, r1 := g.cellRange(minX, minY, maxX, maxY)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			buf = append(buf, g.cells[r*g.cols+c]...)
		}
	}
	return buf
}
