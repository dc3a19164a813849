package spatial

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gridInsertTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spatial_grid_insert_total",
		Help: "The total number of grid insertions.",
	})

	gridInsertCells = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spatial_grid_insert_cells",
		Help:    "The number of cells touched per insertion.",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
	})

	gridQueryTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spatial_grid_query_total",
		Help: "The total number of nearby queries.",
	})

	gridQueryCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spatial_grid_query_candidates",
		Help:    "The number of candidates returned per nearby query.",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})
)

func instrumentGridInsert(cellCount int) {
	gridInsertTotal.Inc()
	gridInsertCells.Observe(float64(cellCount))
}

func instrumentGridQuery(candidateCount int) {
	gridQueryTotal.Inc()
	gridQueryCandidates.Observe(float64(candidateCount))
}
