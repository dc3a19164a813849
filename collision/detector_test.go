package collision

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wareyard/layoutcore/featureflag"
	"github.com/wareyard/layoutcore/geometry"
	"github.com/wareyard/layoutcore/models"
	"github.com/wareyard/layoutcore/spatial"
)

func dims(w, h, d float64) geometry.Dimensions {
	return geometry.Dimensions{Width: w, Height: h, Depth: d}
}

func position(x, z float64) geometry.Vector3 {
	return geometry.Vector3{X: x, Z: z}
}

func testScene() (*models.EntityStore, []*models.Entity) {
	entities := []*models.Entity{
		{ID: "floor-1", Type: models.BlockTypeFloor, Position: position(0, 0), Dimensions: dims(20, 1, 20)},
		{ID: "floor-2", Type: models.BlockTypeFloor, Position: position(100, 0), Dimensions: dims(20, 1, 20)},
		{ID: "rack-1", Name: "Rack A", Type: models.BlockTypeRack, ParentID: "floor-1", Position: position(5, 5), Dimensions: dims(2, 2, 2)},
		{ID: "rack-2", Type: models.BlockTypeRack, ParentID: "floor-1", Position: position(15, 15), Dimensions: dims(2, 2, 2)},
		{ID: "obstacle-1", Type: models.BlockTypeObstacle, ParentID: "floor-2", Position: position(5, 5), Dimensions: dims(3, 3, 3)},
		{ID: "ghost-1", Type: models.BlockTypeRack, ParentID: "floor-1", Position: position(5, 5), Dimensions: dims(2, 2, 2), Status: models.StatusGhost},
		{ID: "deleted-1", Type: models.BlockTypeRack, ParentID: "floor-1", Position: position(15, 5), Dimensions: dims(2, 2, 2), Deleted: true},
	}

	store := models.NewEntityStore()
	store.Hydrate(entities)
	return store, entities
}

func TestDetectorCheckCollision(t *testing.T) {
	store, entities := testScene()
	detector := NewDetector(store)
	detector.Initialize(entities)

	t.Run("overlapping pose collides", func(t *testing.T) {
		result := detector.CheckCollision("new-1", position(5.5, 5), dims(2, 2, 2), 0, "floor-1")
		require.True(t, result.HasCollision)
		require.Equal(t, "rack-1", result.CollidingWith)
		require.Contains(t, result.Reason, "Rack A")
	})

	t.Run("clear pose does not collide", func(t *testing.T) {
		result := detector.CheckCollision("new-1", position(10, 10), dims(2, 2, 2), 0, "floor-1")
		require.False(t, result.HasCollision)
	})

	t.Run("self is excluded", func(t *testing.T) {
		result := detector.CheckCollision("rack-1", position(5, 5), dims(2, 2, 2), 0, "floor-1")
		require.False(t, result.HasCollision)
	})

	t.Run("ghost and deleted entities are out of play", func(t *testing.T) {
		result := detector.CheckCollision("new-1", position(15, 5), dims(2, 2, 2), 0, "floor-1")
		require.False(t, result.HasCollision)
	})

	t.Run("unknown floor means no collision", func(t *testing.T) {
		result := detector.CheckCollision("new-1", position(5, 5), dims(2, 2, 2), 0, "floor-404")
		require.False(t, result.HasCollision)
	})

	t.Run("floors do not collide across each other", func(t *testing.T) {
		// obstacle-1 sits at world (105, 5) but is indexed on
		// floor-2 only.
		result := detector.CheckCollision("new-1", position(105, 5), dims(2, 2, 2), 0, "floor-1")
		require.False(t, result.HasCollision)

		result = detector.CheckCollision("new-1", position(105, 5), dims(2, 2, 2), 0, "floor-2")
		require.True(t, result.HasCollision)
		require.Equal(t, "obstacle-1", result.CollidingWith)
	})
}

func TestDetectorInvalidCellSizeFallsBackToDefault(t *testing.T) {
	store, entities := testScene()

	for _, cellSize := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		detector := NewDetector(store, WithCellSize(cellSize))
		detector.Initialize(entities)

		// A bad cell size must never disable collision detection for
		// the session.
		stats := detector.Stats()
		require.Len(t, stats, 2)

		result := detector.CheckCollision("new-1", position(5.5, 5), dims(2, 2, 2), 0, "floor-1")
		require.True(t, result.HasCollision)
		require.Equal(t, "rack-1", result.CollidingWith)

		info, ok := detector.GetDebugInfo("floor-1")
		require.True(t, ok)
		require.Equal(t, spatial.DefaultCellSize, info.CellSize)
	}
}

func TestDetectorPersistedFloorReference(t *testing.T) {
	entities := []*models.Entity{
		{ID: "floor-1", PersistedID: "persisted-floor-1", Type: models.BlockTypeFloor, Position: position(0, 0), Dimensions: dims(20, 1, 20)},
		// The rack references its floor by persisted id.
		{ID: "rack-1", Type: models.BlockTypeRack, ParentID: "persisted-floor-1", Position: position(5, 5), Dimensions: dims(2, 2, 2)},
	}
	store := models.NewEntityStore()
	store.Hydrate(entities)
	detector := NewDetector(store)
	detector.Initialize(entities)

	t.Run("entity parented by persisted id is indexed", func(t *testing.T) {
		result := detector.CheckCollision("new-1", position(5.5, 5), dims(2, 2, 2), 0, "floor-1")
		require.True(t, result.HasCollision)
		require.Equal(t, "rack-1", result.CollidingWith)
	})

	t.Run("queries accept either floor id", func(t *testing.T) {
		result := detector.CheckCollision("new-1", position(5.5, 5), dims(2, 2, 2), 0, "persisted-floor-1")
		require.True(t, result.HasCollision)

		_, ok := detector.GetDebugInfo("persisted-floor-1")
		require.True(t, ok)
	})

	t.Run("fallback scan resolves floor ids the same way", func(t *testing.T) {
		fallback := NewDetector(store)
		result := fallback.CheckCollision("new-1", position(5.5, 5), dims(2, 2, 2), 0, "floor-1")
		require.True(t, result.HasCollision)
	})

	t.Run("incremental ops accept either floor id", func(t *testing.T) {
		detector.RemoveEntity("rack-1", "persisted-floor-1")
		result := detector.CheckCollision("new-1", position(5.5, 5), dims(2, 2, 2), 0, "floor-1")
		require.False(t, result.HasCollision)

		rack, ok := store.Resolve("rack-1")
		require.True(t, ok)
		detector.AddEntity(rack)
		result = detector.CheckCollision("new-1", position(5.5, 5), dims(2, 2, 2), 0, "floor-1")
		require.True(t, result.HasCollision)
	})
}

func TestDetectorWorldResolution(t *testing.T) {
	entities := []*models.Entity{
		{ID: "floor-1", Type: models.BlockTypeFloor, Position: position(50, 50), Dimensions: dims(20, 1, 20)},
		// Zone-relative (5, 5) resolves to world (55, 55).
		{ID: "rack-1", Type: models.BlockTypeRack, ParentID: "floor-1", Position: position(5, 5), Dimensions: dims(2, 2, 2)},
	}
	store := models.NewEntityStore()
	store.Hydrate(entities)
	detector := NewDetector(store)
	detector.Initialize(entities)

	t.Run("world position adds one parent hop", func(t *testing.T) {
		rack, ok := store.Resolve("rack-1")
		require.True(t, ok)
		require.Equal(t, position(55, 55), detector.WorldPosition(rack))
	})

	t.Run("query in world space finds the nested entity", func(t *testing.T) {
		result := detector.CheckCollision("new-1", position(55.5, 55), dims(2, 2, 2), 0, "floor-1")
		require.True(t, result.HasCollision)
		require.Equal(t, "rack-1", result.CollidingWith)
	})
}

func TestDetectorFirstMatchShortCircuit(t *testing.T) {
	entities := []*models.Entity{
		{ID: "floor-1", Type: models.BlockTypeFloor, Position: position(0, 0), Dimensions: dims(20, 1, 20)},
		{ID: "rack-1", Type: models.BlockTypeRack, ParentID: "floor-1", Position: position(5, 5), Dimensions: dims(2, 2, 2)},
		{ID: "rack-2", Type: models.BlockTypeRack, ParentID: "floor-1", Position: position(6, 5), Dimensions: dims(2, 2, 2)},
	}
	store := models.NewEntityStore()
	store.Hydrate(entities)
	detector := NewDetector(store)
	detector.Initialize(entities)

	// Both racks overlap the pose. Which one is named is
	// unspecified; only the fact of collision is deterministic.
	result := detector.CheckCollision("new-1", position(5.5, 5), dims(2, 2, 2), 0, "floor-1")
	require.True(t, result.HasCollision)
	require.Contains(t, []string{"rack-1", "rack-2"}, result.CollidingWith)
}

func TestDetectorIncrementalSync(t *testing.T) {
	store, entities := testScene()
	detector := NewDetector(store)
	detector.Initialize(entities)

	t.Run("added entity starts colliding", func(t *testing.T) {
		added := &models.Entity{ID: "rack-3", Type: models.BlockTypeRack, ParentID: "floor-1", Position: position(10, 10), Dimensions: dims(2, 2, 2)}
		store.Add(added)
		detector.AddEntity(added)

		result := detector.CheckCollision("new-1", position(10.5, 10), dims(2, 2, 2), 0, "floor-1")
		require.True(t, result.HasCollision)
		require.Equal(t, "rack-3", result.CollidingWith)
	})

	t.Run("updated entity collides at the new pose only", func(t *testing.T) {
		moved, ok := store.Resolve("rack-3")
		require.True(t, ok)
		moved.Position = position(2, 2)
		detector.UpdateEntity(moved)

		result := detector.CheckCollision("new-1", position(10.5, 10), dims(2, 2, 2), 0, "floor-1")
		require.False(t, result.HasCollision)

		result = detector.CheckCollision("new-1", position(2.5, 2), dims(2, 2, 2), 0, "floor-1")
		require.True(t, result.HasCollision)
	})

	t.Run("removed entity stops colliding", func(t *testing.T) {
		detector.RemoveEntity("rack-3", "floor-1")
		store.Remove("rack-3")

		result := detector.CheckCollision("new-1", position(2.5, 2), dims(2, 2, 2), 0, "floor-1")
		require.False(t, result.HasCollision)
	})

	t.Run("removal with unknown floor sweeps every grid", func(t *testing.T) {
		detector.RemoveEntity("rack-1", "")

		result := detector.CheckCollision("new-1", position(5.5, 5), dims(2, 2, 2), 0, "floor-1")
		require.False(t, result.HasCollision)
	})
}

func TestDetectorFallbackEquivalence(t *testing.T) {
	// An uninitialized detector must produce the same verdicts as an
	// initialized one via its brute-force scan.
	rng := rand.New(rand.NewSource(17))

	entities := []*models.Entity{
		{ID: "floor-1", Type: models.BlockTypeFloor, Position: position(0, 0), Dimensions: dims(50, 1, 50)},
	}
	for i := 0; i < 40; i++ {
		entities = append(entities, &models.Entity{
			ID:         "rack-" + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Type:       models.BlockTypeRack,
			ParentID:   "floor-1",
			Position:   position(rng.Float64()*50, rng.Float64()*50),
			Dimensions: dims(rng.Float64()*3+0.5, 1, rng.Float64()*3+0.5),
			Rotation:   geometry.Vector3{Y: rng.Float64() * 2 * math.Pi},
		})
	}

	store := models.NewEntityStore()
	store.Hydrate(entities)

	indexed := NewDetector(store)
	indexed.Initialize(entities)
	fallback := NewDetector(store)

	for i := 0; i < 100; i++ {
		pos := position(rng.Float64()*50, rng.Float64()*50)
		size := dims(rng.Float64()*4+0.5, 1, rng.Float64()*4+0.5)
		yaw := rng.Float64() * 2 * math.Pi

		a := indexed.CheckCollision("probe", pos, size, yaw, "floor-1")
		b := fallback.CheckCollision("probe", pos, size, yaw, "floor-1")
		require.Equal(t, a.HasCollision, b.HasCollision)
	}
}

func TestDetectorObserver(t *testing.T) {
	store, entities := testScene()

	var observed int
	var observedHeightA, observedHeightB float64
	detector := NewDetector(store, WithObserver(func(a, b geometry.Box2D, heightA, heightB float64) {
		observed++
		observedHeightA = heightA
		observedHeightB = heightB
	}))
	detector.Initialize(entities)

	result := detector.CheckCollision("new-1", position(5.5, 5), dims(2, 3, 2), 0, "floor-1")
	require.True(t, result.HasCollision)
	require.Equal(t, 1, observed)
	require.Equal(t, 3.0, observedHeightA)
	require.Equal(t, 2.0, observedHeightB)

	result = detector.CheckCollision("new-1", position(10, 10), dims(2, 3, 2), 0, "floor-1")
	require.False(t, result.HasCollision)
	require.Equal(t, 1, observed)
}

func TestDetectorCorruptedGeometry(t *testing.T) {
	store, entities := testScene()

	t.Run("fails open by default", func(t *testing.T) {
		detector := NewDetector(store)
		detector.Initialize(entities)

		result := detector.CheckCollision("new-1", geometry.Vector3{X: math.NaN()}, dims(2, 2, 2), 0, "floor-1")
		require.False(t, result.HasCollision)
	})

	t.Run("fails closed when flagged", func(t *testing.T) {
		detector := NewDetector(store,
			WithFeatureFlags(featureflag.New([]string{string(featureflag.FlagCollisionFailClosed)})))
		detector.Initialize(entities)

		result := detector.CheckCollision("new-1", geometry.Vector3{X: math.NaN()}, dims(2, 2, 2), 0, "floor-1")
		require.True(t, result.HasCollision)
	})
}

func TestDetectorStats(t *testing.T) {
	store, entities := testScene()
	detector := NewDetector(store, WithCellSize(5))
	detector.Initialize(entities)

	stats := detector.Stats()
	require.Len(t, stats, 2)
	require.Equal(t, 2, stats["floor-1"].EntityCount)
	require.Equal(t, 1, stats["floor-2"].EntityCount)

	info, ok := detector.GetDebugInfo("floor-1")
	require.True(t, ok)
	require.Equal(t, 5.0, info.CellSize)

	_, ok = detector.GetDebugInfo("floor-404")
	require.False(t, ok)
}
