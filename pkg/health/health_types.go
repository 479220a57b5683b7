package health

import (
	"sync"
	"time"

	"github.com/dd0wney/workpairs/pkg/clock"
)

// Status is the outcome of a check or of a whole probe.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// worse returns whichever of s and other is less healthy. Unknown statuses
// count as unhealthy.
func (s Status) worse(other Status) Status {
	if other.rank() > s.rank() {
		return other
	}
	return s
}

// Probe selects which set of checks a request runs.
type Probe string

const (
	// ProbeHealth is the aggregate /health view.
	ProbeHealth Probe = "health"
	// ProbeReadiness decides whether uploads should be routed here.
	ProbeReadiness Probe = "readiness"
	// ProbeLiveness decides whether the process should be restarted.
	ProbeLiveness Probe = "liveness"
)

// Check is the result of one named check.
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ns"`
}

// CheckFunc performs one check.
type CheckFunc func() Check

// HealthChecker holds the checks registered for each probe.
type HealthChecker struct {
	mu        sync.RWMutex
	probes    map[Probe]map[string]CheckFunc
	clock     clock.Clock
	startedAt time.Time
}

// Option configures a HealthChecker.
type Option func(*HealthChecker)

// WithClock sets the clock used for timestamps and uptime.
func WithClock(c clock.Clock) Option {
	return func(hc *HealthChecker) {
		if c != nil {
			hc.clock = c
		}
	}
}

// Response is the body of every health endpoint.
type Response struct {
	Probe     Probe            `json:"probe"`
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    float64          `json:"uptime_seconds"`
}
