package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the number of bytes written for a response
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

// IncHTTPRequestsInFlight marks the start of a request
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks the end of a request
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordUpload records the size of an uploaded file
func (r *Registry) RecordUpload(size int) {
	r.UploadSizeBytes.Observe(float64(size))
}

// RecordComputation records one overlap computation. Only successful runs
// contribute to the records and pairs distributions.
func (r *Registry) RecordComputation(strategy, status string, records int, comparisons int64, pairs int, duration time.Duration) {
	r.ComputationsTotal.WithLabelValues(strategy, status).Inc()
	r.ComputationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	r.ComparisonsTotal.WithLabelValues(strategy).Add(float64(comparisons))

	if status == "ok" {
		r.RecordsProcessed.Observe(float64(records))
		r.PairsFound.Observe(float64(pairs))
	}
}

// RecordFileLoaded records the outcome of loading one file
func (r *Registry) RecordFileLoaded(format, status string) {
	r.FilesLoadedTotal.WithLabelValues(format, status).Inc()
}

// RecordRowSkipped records one row rejected by the loader
func (r *Registry) RecordRowSkipped(reason string) {
	r.RowsSkippedTotal.WithLabelValues(reason).Inc()
}

// UpdateSystemMetrics refreshes uptime, goroutine and memory gauges
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	r.UptimeSeconds.Set(time.Since(r.startedAt).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(mem.Alloc))
	r.MemorySysBytes.Set(float64(mem.Sys))
}

// Handler serves the registry in the Prometheus exposition format, refreshing
// system metrics on every scrape.
func (r *Registry) Handler() http.Handler {
	inner := promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.UpdateSystemMetrics()
		inner.ServeHTTP(w, req)
	})
}
