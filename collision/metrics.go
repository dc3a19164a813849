package collision

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkCountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collision_check_count_total",
		Help: "The total number of collision checks.",
	})

	collisionCountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collision_count_total",
		Help: "The total number of confirmed collisions.",
	})

	corruptedGeometryTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collision_corrupted_geometry_total",
		Help: "The total number of non-finite geometry inputs seen.",
	})

	gridCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "collision_floor_grid_count",
		Help: "The number of per-floor spatial grids.",
	})
)

func instrumentCheck() {
	checkCountTotal.Inc()
}

func instrumentCollision() {
	collisionCountTotal.Inc()
}

func instrumentCorruptedGeometry() {
	corruptedGeometryTotal.Inc()
}

func instrumentSetGridCount(count int) {
	gridCount.Set(float64(count))
}
