package api

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/dd0wney/workpairs/pkg/clock"
	"github.com/dd0wney/workpairs/pkg/config"
	"github.com/dd0wney/workpairs/pkg/health"
	"github.com/dd0wney/workpairs/pkg/logging"
	"github.com/dd0wney/workpairs/pkg/metrics"
	"github.com/dd0wney/workpairs/pkg/overlap"
)

// Server is the HTTP upload service. It accepts assignment files, runs them
// through the loader and the overlap engine and returns the aggregated pairs.
type Server struct {
	cfg     *config.Configuration
	engine  *overlap.Engine
	metrics *metrics.Registry
	health  *health.HealthChecker
	logger  logging.Logger
	clock   clock.Clock

	// draining is set once graceful shutdown starts; readiness fails after.
	draining atomic.Bool

	router  *mux.Router
	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithEngine replaces the engine built from the configuration.
func WithEngine(e *overlap.Engine) Option {
	return func(s *Server) { s.engine = e }
}

// WithMetrics sets the Prometheus registry. The default is a fresh registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Server) { s.metrics = r }
}

// WithHealthChecker sets the health checker the server registers its checks on.
func WithHealthChecker(hc *health.HealthChecker) Option {
	return func(s *Server) { s.health = hc }
}

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock sets the clock used to resolve open-ended assignments.
func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}
