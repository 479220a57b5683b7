// Package api serves the upload form and the JSON upload endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/dd0wney/workpairs/pkg/api/middleware"
	"github.com/dd0wney/workpairs/pkg/clock"
	"github.com/dd0wney/workpairs/pkg/config"
	"github.com/dd0wney/workpairs/pkg/health"
	"github.com/dd0wney/workpairs/pkg/logging"
	"github.com/dd0wney/workpairs/pkg/metrics"
	"github.com/dd0wney/workpairs/pkg/overlap"
)

const (
	// multipartOverhead is the body allowance on top of MaxUploadSize for
	// multipart boundaries and part headers.
	multipartOverhead = 1 << 20

	selfTestBudget = 250 * time.Millisecond
)

// selfTestRecords is a fixed input with a known answer: employees 143 and
// 218 share 1243 days on project 10 and 366 days on project 12.
var selfTestRecords = []overlap.Assignment{
	overlap.NewAssignment(143, 12, time.Date(2013, 1, 11, 0, 0, 0, 0, time.UTC), time.Date(2014, 5, 1, 0, 0, 0, 0, time.UTC)),
	overlap.NewAssignment(218, 12, time.Date(2013, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2014, 5, 1, 0, 0, 0, 0, time.UTC)),
	overlap.NewAssignment(143, 10, time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2012, 5, 27, 0, 0, 0, 0, time.UTC)),
	overlap.NewAssignment(218, 10, time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2012, 5, 27, 0, 0, 0, 0, time.UTC)),
}

const selfTestDays = 366 + 1243

// NewServer creates a new API server from cfg. Collaborators not supplied
// through options are built from the configuration.
func NewServer(cfg *config.Configuration, opts ...Option) *Server {
	s := &Server{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	s.logger = s.logger.With(logging.Component("api"))
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	if s.health == nil {
		s.health = health.NewHealthChecker(health.WithClock(s.clock))
	}
	if s.engine == nil {
		s.engine = overlap.NewEngine(
			overlap.WithStrategy(cfg.Strategy()),
			overlap.WithWorkers(cfg.Workers()),
			overlap.WithBruteForceThreshold(cfg.Engine.BruteForceThreshold),
			overlap.WithLogger(s.logger),
			overlap.WithRecorder(s.metrics),
		)
	}

	s.registerHealthChecks()
	s.router = s.routes()
	s.handler = s.buildHandler(s.router)

	return s
}

// Handler returns the root HTTP handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Drain marks the server as shutting down so readiness probes fail. It is
// meant to be registered as a graceful server shutdown hook.
func (s *Server) Drain() {
	if !s.draining.Swap(true) {
		s.logger.Info("draining: readiness now reports unhealthy")
	}
}

// Draining reports whether Drain has been called.
func (s *Server) Draining() bool {
	return s.draining.Load()
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	s.health.Mount(router)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	form := gziphandler.GzipHandler(http.HandlerFunc(s.handleUploadForm))
	router.Handle("/upload", form).Methods(http.MethodGet, http.MethodHead)
	router.Handle("/home", form).Methods(http.MethodGet, http.MethodHead)
	router.Handle("/", http.RedirectHandler("/home", http.StatusFound)).Methods(http.MethodGet)

	bodyLimit := middleware.BodySizeLimit(s.cfg.Server.MaxUploadSize + multipartOverhead)

	// Same-origin form posts; cross-origin callers use /api/upload.
	router.Handle("/upload", bodyLimit(gziphandler.GzipHandler(http.HandlerFunc(s.handleUpload)))).
		Methods(http.MethodPost)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(
		middleware.CORS(s.corsConfig(), s.logger),
		bodyLimit,
		gziphandler.GzipHandler,
	)
	apiRouter.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost, http.MethodOptions)

	return router
}

func (s *Server) buildHandler(router *mux.Router) http.Handler {
	var handler http.Handler = router
	handler = middleware.SecurityHeaders(nil)(handler)
	handler = middleware.Metrics(s.metrics, s.routeLabel)(handler)
	handler = middleware.Logging(s.logger, middleware.GetRequestID)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.PanicRecovery(s.logger)(handler)
	return handler
}

// routeLabel maps a request to its route template so metric cardinality
// stays bounded.
func (s *Server) routeLabel(r *http.Request) string {
	var match mux.RouteMatch
	if s.router.Match(r, &match) && match.Route != nil {
		if tmpl, err := match.Route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

func (s *Server) corsConfig() *middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig()
	cfg.AllowedOrigins = s.cfg.CORS.AllowedOrigins
	cfg.AllowCredentials = s.cfg.CORS.AllowCredentials
	return cfg
}

func (s *Server) registerHealthChecks() {
	engine := health.EngineCheck(s.selfTest, selfTestBudget)
	shutdown := health.ShutdownCheck(&s.draining)

	for _, probe := range []health.Probe{health.ProbeHealth, health.ProbeReadiness} {
		s.health.Register(probe, "engine", engine)
		s.health.Register(probe, "shutdown", shutdown)
	}
	s.health.RegisterCheck("memory", health.MemoryCheck(health.RuntimeMemoryUsage))
	s.health.RegisterLivenessCheck("alive", health.AliveCheck())
}

// selfTest runs the configured strategy over selfTestRecords without
// touching metrics.
func (s *Server) selfTest() error {
	res, err := overlap.Aggregate(s.engine.Strategy(), selfTestRecords)
	if err != nil {
		return errors.Wrap(err, "engine self-test")
	}
	if res.Longest == nil || res.Longest.DaysWorkedTogether != selfTestDays {
		return errors.Errorf("engine self-test: expected %d days, got %+v", selfTestDays, res.Longest)
	}
	return nil
}
