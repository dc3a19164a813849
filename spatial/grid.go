package spatial

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/wareyard/layoutcore/geometry"
)

// Spatial Hash Grid
//
// A uniformly sub-divided grid implementing the Index interface. The
// particularities are:
//   - the grid has a cell size that defines how large a cell is. A
//     cell size of 5 makes each cell hold a 5x5 world-unit region.
//     Smaller cells return fewer false candidates but multiply the
//     per-entity bookkeeping for entities spanning many cells.
//   - entities only rotate about the vertical axis, so membership is
//     computed from the axis-aligned bounds of the rotated footprint
//     and the grid stays 2D.

// DefaultCellSize is the cell size used when a caller has no reason
// to tune it.
const DefaultCellSize = 5.0

// Cell is a grid cell coordinate, derived by flooring world
// coordinates by the cell size.
type Cell struct {
	X int
	Z int
}

// Grid is not safe for concurrent use. The owning detector serializes
// access behind its own lock.
type Grid struct {
	cellSize float64
	cells    map[Cell]map[string]struct{}
	entities map[string][]Cell
}

func NewGrid(cellSize float64) (*Grid, error) {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return nil, errors.New("invalid grid cell size").
			WithTag("cell_size", cellSize)
	}

	return &Grid{
		cellSize: cellSize,
		cells:    make(map[Cell]map[string]struct{}),
		entities: make(map[string][]Cell),
	}, nil
}

func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// cellRange returns the inclusive cell coordinate range covered by
// the box's axis-aligned bounds.
func (g *Grid) cellRange(box geometry.Box2D) (minX, minZ, maxX, maxZ int) {
	bMinX, bMinZ, bMaxX, bMaxZ := box.AABB()
	minX = int(math.Floor(bMinX / g.cellSize))
	minZ = int(math.Floor(bMinZ / g.cellSize))
	maxX = int(math.Floor(bMaxX / g.cellSize))
	maxZ = int(math.Floor(bMaxZ / g.cellSize))
	return minX, minZ, maxX, maxZ
}

// Insert registers the entity in every cell its rotated footprint
// touches. Inserting an id that is already present re-indexes it, so
// callers cannot leave stale cell memberships behind.
func (g *Grid) Insert(id string, box geometry.Box2D) {
	if _, ok := g.entities[id]; ok {
		g.Remove(id)
	}

	minX, minZ, maxX, maxZ := g.cellRange(box)

	occupied := make([]Cell, 0, (maxX-minX+1)*(maxZ-minZ+1))
	for z := minZ; z <= maxZ; z++ {
		for x := minX; x <= maxX; x++ {
			cell := Cell{X: x, Z: z}
			members, ok := g.cells[cell]
			if !ok {
				members = make(map[string]struct{})
				g.cells[cell] = members
			}
			members[id] = struct{}{}
			occupied = append(occupied, cell)
		}
	}
	g.entities[id] = occupied

	instrumentGridInsert(len(occupied))
}

// Remove erases the entity from both sides of the index. Removing an
// unknown id is a no-op.
func (g *Grid) Remove(id string) {
	occupied, ok := g.entities[id]
	if !ok {
		return
	}

	for _, cell := range occupied {
		members, ok := g.cells[cell]
		if !ok {
			continue
		}
		delete(members, id)
		if len(members) == 0 {
			delete(g.cells, cell)
		}
	}
	delete(g.entities, id)
}

// Update recomputes cell membership from scratch. Rotation can move
// an entity into an arbitrary set of new cells, so there is no delta
// path.
func (g *Grid) Update(id string, box geometry.Box2D) {
	g.Remove(id)
	g.Insert(id, box)
}

// Nearby returns the deduplicated union of entities registered in the
// cells the query box touches. The result is a candidate superset
// that always contains every true collision.
func (g *Grid) Nearby(box geometry.Box2D) []string {
	minX, minZ, maxX, maxZ := g.cellRange(box)

	seen := make(map[string]struct{})
	for z := minZ; z <= maxZ; z++ {
		for x := minX; x <= maxX; x++ {
			for id := range g.cells[Cell{X: x, Z: z}] {
				seen[id] = struct{}{}
			}
		}
	}

	candidates := make([]string, 0, len(seen))
	for id := range seen {
		candidates = append(candidates, id)
	}

	instrumentGridQuery(len(candidates))
	return candidates
}

// Clear drops all cells and entities, returning the grid to its
// unpopulated state.
func (g *Grid) Clear() {
	g.cells = make(map[Cell]map[string]struct{})
	g.entities = make(map[string][]Cell)
}

func (g *Grid) EntityCount() int {
	return len(g.entities)
}

func (g *Grid) CellCount() int {
	return len(g.cells)
}

func (g *Grid) GetDebugInfo() DebugInfo {
	info := DebugInfo{
		CellSize:    g.cellSize,
		CellCount:   len(g.cells),
		EntityCount: len(g.entities),
		Occupancy:   make(map[Cell]int, len(g.cells)),
	}
	for cell, members := range g.cells {
		info.Occupancy[cell] = len(members)
	}
	return info
}
