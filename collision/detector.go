package collision

import (
	"math"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/wareyard/layoutcore/featureflag"
	"github.com/wareyard/layoutcore/geometry"
	"github.com/wareyard/layoutcore/models"
	"github.com/wareyard/layoutcore/spatial"
)

// Result is a collision verdict. CollidingWith names the first
// confirmed collision; when several entities overlap the proposed
// pose, which one is named is unspecified.
type Result struct {
	HasCollision  bool
	CollidingWith string
	Reason        string
}

// Observer is notified synchronously with both oriented boxes and
// entity heights whenever a collision is confirmed. It is purely
// observational and never affects the verdict.
type Observer func(a geometry.Box2D, b geometry.Box2D, heightA float64, heightB float64)

type Option func(*Detector)

func WithCellSize(cellSize float64) Option {
	return func(d *Detector) {
		d.cellSize = cellSize
	}
}

func WithObserver(o Observer) Option {
	return func(d *Detector) {
		d.observer = o
	}
}

func WithFeatureFlags(flags featureflag.FeatureFlag) Option {
	return func(d *Detector) {
		d.flags = flags
	}
}

// Detector owns one spatial grid per floor and answers whole-scene
// collision queries by narrowing candidates through the grid and
// confirming with the exact oriented box test.
//
// A detector is explicitly constructed and owned by whatever owns the
// editing session. Internal state is guarded for single-writer,
// many-reader access.
type Detector struct {
	store    *models.EntityStore
	cellSize float64
	observer Observer
	flags    featureflag.FeatureFlag

	mutex       sync.RWMutex
	initialized bool
	grids       map[string]*spatial.Grid
}

func NewDetector(store *models.EntityStore, opts ...Option) *Detector {
	d := &Detector{
		store:    store,
		cellSize: spatial.DefaultCellSize,
		grids:    make(map[string]*spatial.Grid),
	}
	for _, opt := range opts {
		opt(d)
	}

	// A zero or non-finite cell size would leave every floor without a
	// grid and silently disable collision detection for the whole
	// session.
	if d.cellSize <= 0 || math.IsNaN(d.cellSize) || math.IsInf(d.cellSize, 0) {
		logs.WithTag("cell_size", d.cellSize).
			Warn("invalid cell size, falling back to default")
		d.cellSize = spatial.DefaultCellSize
	}
	return d
}

// Initialize builds one grid per floor from a full entity snapshot
// and indexes every collidable entity into its parent floor's grid.
// Prior grid state is fully replaced. Cross-floor collisions are
// impossible by construction since every entity is indexed on exactly
// one floor.
func (d *Detector) Initialize(entities []*models.Entity) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.grids = make(map[string]*spatial.Grid)

	for _, e := range entities {
		if !e.IsFloor() || e.Deleted {
			continue
		}
		grid, err := spatial.NewGrid(d.cellSize)
		if err != nil {
			logs.WithTag("floor_id", e.ID).
				WithTag("cell_size", d.cellSize).
				Warn(err)
			continue
		}
		d.grids[e.ID] = grid
	}

	for _, e := range entities {
		if !e.IsCollidable() {
			continue
		}
		grid, ok := d.grids[d.floorKey(e.ParentID)]
		if !ok {
			// An entity detached from any known floor has nothing
			// to collide with.
			continue
		}
		grid.Insert(e.ID, d.worldBox(e))
	}

	d.initialized = true
	instrumentSetGridCount(len(d.grids))
}

// CheckCollision answers whether an entity at the proposed pose would
// collide with anything nearby on the given floor. The first
// confirmed collision short-circuits; the caller only needs a
// boolean gate, not an exhaustive report.
func (d *Detector) CheckCollision(entityID string, position geometry.Vector3, dims geometry.Dimensions, yaw float64, floorID string) Result {
	instrumentCheck()

	if !position.IsFinite() || !dims.IsFinite() || math.IsNaN(yaw) || math.IsInf(yaw, 0) {
		return d.resolveCorrupted(entityID, "proposed pose is not finite")
	}

	box := geometry.NewBox2D(position, dims, yaw)

	d.mutex.RLock()
	defer d.mutex.RUnlock()

	var index spatial.Index
	if d.initialized && !d.flags.IsSet(featureflag.FlagDisableGridIndex) {
		grid, ok := d.grids[d.floorKey(floorID)]
		if !ok {
			// No known floor means no collision under this policy.
			return Result{}
		}
		index = grid
	} else {
		index = d.bruteIndex(floorID)
	}

	return d.confirm(index, entityID, box, dims.Height)
}

// confirm resolves grid candidates to exact verdicts. Both the
// indexed path and the brute-force fallback run through here, so the
// two cannot diverge.
func (d *Detector) confirm(index spatial.Index, selfID string, box geometry.Box2D, height float64) Result {
	for _, id := range index.Nearby(box) {
		if id == selfID {
			continue
		}

		other, ok := d.store.Resolve(id)
		if !ok {
			continue
		}
		// The proposed entity may be indexed under either of its
		// ids.
		if other.ID == selfID || (other.PersistedID != "" && other.PersistedID == selfID) {
			continue
		}
		if !other.IsCollidable() {
			continue
		}

		otherBox := d.worldBox(other)
		if !otherBox.Finite() {
			r := d.resolveCorrupted(other.ID, "entity geometry is not finite")
			if !r.HasCollision {
				continue
			}
			r.CollidingWith = other.ID
			return r
		}

		if geometry.Intersects(box, otherBox) {
			if d.observer != nil {
				d.observer(box, otherBox, height, other.Dimensions.Height)
			}
			instrumentCollision()
			return Result{
				HasCollision:  true,
				CollidingWith: other.ID,
				Reason:        "collision with " + other.DisplayName(),
			}
		}
	}
	return Result{}
}

// bruteIndex builds a one-shot degenerate index over every collidable
// entity on the floor. It preserves correctness when the detector has
// not been initialized, at O(n) cost.
func (d *Detector) bruteIndex(floorID string) *spatial.Brute {
	key := d.floorKey(floorID)

	brute := spatial.NewBrute()
	for _, e := range d.store.List() {
		if !e.IsCollidable() || d.floorKey(e.ParentID) != key {
			continue
		}
		brute.Insert(e.ID, d.worldBox(e))
	}
	return brute
}

// resolveCorrupted applies the configured policy for non-finite
// geometry. The default fails open: report no collision and log a
// diagnostic rather than block the interactive session.
func (d *Detector) resolveCorrupted(entityID string, reason string) Result {
	instrumentCorruptedGeometry()
	logs.WithTag("entity_id", entityID).
		Warn(reason)

	if d.flags.IsSet(featureflag.FlagCollisionFailClosed) {
		return Result{HasCollision: true, Reason: reason}
	}
	return Result{}
}

// AddEntity indexes a newly placed entity into its floor's grid.
// Non-collidable entities are ignored.
func (d *Detector) AddEntity(e *models.Entity) {
	if !e.IsCollidable() {
		return
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	grid, ok := d.grids[d.floorKey(e.ParentID)]
	if !ok {
		return
	}
	grid.Insert(e.ID, d.worldBox(e))
}

// UpdateEntity recomputes the entity's cell membership after a pose
// change.
func (d *Detector) UpdateEntity(e *models.Entity) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	grid, ok := d.grids[d.floorKey(e.ParentID)]
	if !ok {
		return
	}
	if !e.IsCollidable() {
		// Soft-deleted or ghosted in place: drop it from the index.
		grid.Remove(e.ID)
		return
	}
	grid.Update(e.ID, d.worldBox(e))
}

// RemoveEntity drops the entity from its floor's grid. When the floor
// is unknown, the id is removed from every grid since the caller may
// no longer know which floor owned it.
func (d *Detector) RemoveEntity(id string, floorID string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if grid, ok := d.grids[d.floorKey(floorID)]; ok {
		grid.Remove(id)
		return
	}
	for _, grid := range d.grids {
		grid.Remove(id)
	}
}

// WorldPosition resolves an entity's stored position to world space.
// Nested entities store zone-relative positions; resolution walks
// exactly one parent hop. Deeper hierarchies are unsupported.
func (d *Detector) WorldPosition(e *models.Entity) geometry.Vector3 {
	if e.ParentID == "" || e.IsFloor() {
		return e.Position
	}
	parent, ok := d.store.Resolve(e.ParentID)
	if !ok {
		return e.Position
	}
	return geometry.Add(parent.Position, e.Position)
}

func (d *Detector) worldBox(e *models.Entity) geometry.Box2D {
	return geometry.NewBox2D(d.WorldPosition(e), e.Dimensions, e.Yaw())
}

// floorKey normalizes a floor reference to the id grids are keyed by.
// Callers may hold either of a floor's two ids; grids are always keyed
// by the client id.
func (d *Detector) floorKey(id string) string {
	if floor, ok := d.store.Resolve(id); ok {
		return floor.ID
	}
	return id
}

// GetDebugInfo returns the grid snapshot for one floor, for the debug
// overlay.
func (d *Detector) GetDebugInfo(floorID string) (spatial.DebugInfo, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	grid, ok := d.grids[d.floorKey(floorID)]
	if !ok {
		return spatial.DebugInfo{}, false
	}
	return grid.GetDebugInfo(), true
}

// Stats returns the grid snapshot of every floor.
func (d *Detector) Stats() map[string]spatial.DebugInfo {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	stats := make(map[string]spatial.DebugInfo, len(d.grids))
	for floorID, grid := range d.grids {
		stats[floorID] = grid.GetDebugInfo()
	}
	return stats
}
