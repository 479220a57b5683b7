package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec
	UploadSizeBytes       prometheus.Histogram

	// Engine Metrics
	ComputationsTotal   *prometheus.CounterVec
	ComputationDuration *prometheus.HistogramVec
	RecordsProcessed    prometheus.Histogram
	ComparisonsTotal    *prometheus.CounterVec
	PairsFound          prometheus.Histogram

	// Loader Metrics
	FilesLoadedTotal *prometheus.CounterVec
	RowsSkippedTotal *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	startedAt time.Time
	registry  *prometheus.Registry
	mu        sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry:  reg,
		startedAt: time.Now(),
	}

	r.initHTTPMetrics()
	r.initEngineMetrics()
	r.initLoaderMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
