// Package health runs the liveness, readiness and aggregate checks of the
// upload service.
package health

import (
	"sync"
	"time"

	"github.com/dd0wney/workpairs/pkg/clock"
)

// NewHealthChecker creates a checker with no checks registered.
func NewHealthChecker(opts ...Option) *HealthChecker {
	hc := &HealthChecker{
		probes: map[Probe]map[string]CheckFunc{
			ProbeHealth:    {},
			ProbeReadiness: {},
			ProbeLiveness:  {},
		},
		clock: clock.RealClock{},
	}
	for _, opt := range opts {
		opt(hc)
	}
	hc.startedAt = hc.clock.Now()
	return hc
}

// Register adds check under name to probe, replacing any check with the
// same name.
func (hc *HealthChecker) Register(probe Probe, name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	checks, ok := hc.probes[probe]
	if !ok {
		checks = make(map[string]CheckFunc)
		hc.probes[probe] = checks
	}
	checks[name] = check
}

// RegisterCheck adds a check to the aggregate /health probe.
func (hc *HealthChecker) RegisterCheck(name string, check CheckFunc) {
	hc.Register(ProbeHealth, name, check)
}

// RegisterReadinessCheck adds a check to the readiness probe.
func (hc *HealthChecker) RegisterReadinessCheck(name string, check CheckFunc) {
	hc.Register(ProbeReadiness, name, check)
}

// RegisterLivenessCheck adds a check to the liveness probe.
func (hc *HealthChecker) RegisterLivenessCheck(name string, check CheckFunc) {
	hc.Register(ProbeLiveness, name, check)
}

// Check runs the aggregate probe.
func (hc *HealthChecker) Check() Response { return hc.Run(ProbeHealth) }

// CheckReadiness runs the readiness probe.
func (hc *HealthChecker) CheckReadiness() Response { return hc.Run(ProbeReadiness) }

// CheckLiveness runs the liveness probe.
func (hc *HealthChecker) CheckLiveness() Response { return hc.Run(ProbeLiveness) }

// Run executes every check of probe concurrently. The probe status is the
// worst check status; a probe with no checks is healthy.
func (hc *HealthChecker) Run(probe Probe) Response {
	hc.mu.RLock()
	checks := make(map[string]CheckFunc, len(hc.probes[probe]))
	for name, fn := range hc.probes[probe] {
		checks[name] = fn
	}
	hc.mu.RUnlock()

	now := hc.clock.Now()
	response := Response{
		Probe:     probe,
		Status:    StatusHealthy,
		Timestamp: now,
		Checks:    make(map[string]Check, len(checks)),
		Uptime:    now.Sub(hc.startedAt).Seconds(),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, fn := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			check := fn()
			check.Duration = time.Since(start)
			check.LastChecked = now
			if check.Name == "" {
				check.Name = name
			}

			mu.Lock()
			response.Checks[name] = check
			response.Status = response.Status.worse(check.Status)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return response
}
