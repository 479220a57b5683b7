package health

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Mount registers /health, /health/live and /health/ready on router.
func (hc *HealthChecker) Mount(router *mux.Router) {
	router.HandleFunc("/health", hc.HTTPHandler()).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/health/live", hc.LivenessHandler()).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/health/ready", hc.ReadinessHandler()).Methods(http.MethodGet, http.MethodHead)
}

// HTTPHandler serves the aggregate probe. Degraded still answers 200.
func (hc *HealthChecker) HTTPHandler() http.HandlerFunc {
	return hc.handler(ProbeHealth, func(s Status) bool { return s != StatusUnhealthy })
}

// ReadinessHandler serves the readiness probe; anything short of healthy is
// 503.
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return hc.handler(ProbeReadiness, func(s Status) bool { return s == StatusHealthy })
}

// LivenessHandler serves the liveness probe.
func (hc *HealthChecker) LivenessHandler() http.HandlerFunc {
	return hc.handler(ProbeLiveness, func(s Status) bool { return s == StatusHealthy })
}

func (hc *HealthChecker) handler(probe Probe, ok func(Status) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := hc.Run(probe)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if ok(response.Status) {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if r.Method == http.MethodHead {
			return
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}
