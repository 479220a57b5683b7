package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEngineMetrics() {
	r.ComputationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "workpairs_computations_total",
			Help: "Total number of overlap computations by strategy and outcome",
		},
		[]string{"strategy", "status"},
	)

	r.ComputationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workpairs_computation_duration_seconds",
			Help:    "Overlap computation latency in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"strategy"},
	)

	r.RecordsProcessed = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "workpairs_records_processed",
			Help:    "Number of assignments per computation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	r.ComparisonsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "workpairs_comparisons_total",
			Help: "Total number of assignment pairs compared",
		},
		[]string{"strategy"},
	)

	r.PairsFound = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "workpairs_pairs_found",
			Help:    "Number of employee pairs with a positive overlap per computation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
}
