package spatial

import "github.com/wareyard/layoutcore/geometry"

// DebugInfo is a read-only snapshot of an index, consumed by the
// editor's debug overlay.
type DebugInfo struct {
	CellSize    float64
	CellCount   int
	EntityCount int
	// Occupancy maps occupied cell coordinates to the number of
	// entities registered in that cell.
	Occupancy map[Cell]int
}

// Index narrows "all entities" down to candidates plausibly near a
// query box. Nearby returns a superset of the true collisions; the
// caller confirms with the exact oriented box test.
type Index interface {
	Insert(id string, box geometry.Box2D)
	Remove(id string)
	Update(id string, box geometry.Box2D)
	Nearby(box geometry.Box2D) []string
	Clear()

	// debug stuff:
	GetDebugInfo() DebugInfo
}
