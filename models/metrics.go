package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entityCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "layout_entity_count",
		Help: "The number of entities in the loaded layout.",
	})
)

func instrumentSetEntityCount(count int) {
	entityCount.Set(float64(count))
}
