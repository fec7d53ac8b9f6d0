package arena

import "testing"

var testBounds = Rect{Max: Vec2{4000, 4000}}

func contains(ids []BodyID, id BodyID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func TestSpatialGridInsertAndQuery(t *testing.T) {
	grid := NewSpatialGrid(testBounds)

	grid.InsertCircle(Vec2{100, 100}, 1, 7)

	// Query around (100,100) should find it
	if !contains(grid.QueryBuf(50, 50, 150, 150, nil), 7) {
		t.Error("expected to find body at (100,100)")
	}

	// Query far away should not find it
	if contains(grid.QueryBuf(2950, 2950, 3050, 3050, nil), 7) {
		t.Error("should not find body at (3000,3000)")
	}
}

func TestSpatialGridClear(t *testing.T) {
	grid := NewSpatialGrid(testBounds)

	grid.InsertCircle(Vec2{500, 500}, 1, 1)
	grid.Clear()

	if results := grid.QueryBuf(400, 400, 600, 600, nil); len(results) != 0 {
		t.Errorf("expected 0 results after clear, got %d", len(results))
	}
}

func TestSpatialGridInsertCircle(t *testing.T) {
	grid := NewSpatialGrid(testBounds)

	// Insert a large body (obstacle radius 40)
	grid.InsertCircle(Vec2{160, 160}, 40, 3)

	// Query at edge of bounding box should find it
	if !contains(grid.QueryBuf(115, 115, 125, 125, nil), 3) {
		t.Error("expected to find circle body near its edge")
	}
}

func TestSpatialGridBoundaryClamp(t *testing.T) {
	grid := NewSpatialGrid(testBounds)

	// Negative coords should clamp to 0
	grid.InsertCircle(Vec2{-10, -10}, 1, 1)
	if !contains(grid.QueryBuf(0, 0, 50, 50, nil), 1) {
		t.Error("expected to find body inserted at negative coords")
	}

	// Beyond world edge should clamp to max
	grid.InsertCircle(Vec2{5000, 5000}, 1, 2)
	if !contains(grid.QueryBuf(3950, 3950, 4000, 4000, nil), 2) {
		t.Error("expected to find body inserted beyond world edge")
	}
}

func TestSpatialGridSegmentBox(t *testing.T) {
	grid := NewSpatialGrid(testBounds)

	grid.InsertBox(0, 495, 1000, 505, 9)
	if !contains(grid.QueryBuf(790, 490, 810, 510, nil), 9) {
		t.Error("long box should be found along its length")
	}
}
