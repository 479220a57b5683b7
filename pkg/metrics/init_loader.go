package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLoaderMetrics() {
	r.FilesLoadedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "workpairs_files_loaded_total",
			Help: "Total number of assignment files loaded by format and outcome",
		},
		[]string{"format", "status"},
	)

	r.RowsSkippedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "workpairs_rows_skipped_total",
			Help: "Total number of input rows rejected by the loader",
		},
		[]string{"reason"},
	)
}
