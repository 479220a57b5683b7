package health

import (
	"runtime"
	"sync/atomic"
	"time"
)

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) Check {
	return Check{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now(),
	}
}

// AliveCheck reports healthy for as long as the process can serve requests.
func AliveCheck() CheckFunc {
	return func() Check { return SimpleCheck("alive") }
}

// ShutdownCheck reports unhealthy once draining is set, so load balancers
// stop routing uploads to an instance that is shutting down.
func ShutdownCheck(draining *atomic.Bool) CheckFunc {
	return func() Check {
		check := Check{Name: "shutdown", Status: StatusHealthy, Message: "Accepting requests"}
		if draining.Load() {
			check.Status = StatusUnhealthy
			check.Message = "Shutting down"
		}
		return check
	}
}

// EngineCheck runs selfTest, a small computation with a known answer, and
// reports unhealthy when it fails or degraded when it is slower than budget.
func EngineCheck(selfTest func() error, budget time.Duration) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "engine",
			Details: make(map[string]any),
		}

		start := time.Now()
		err := selfTest()
		elapsed := time.Since(start)
		check.Details["self_test_ms"] = float64(elapsed.Microseconds()) / 1000

		switch {
		case err != nil:
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		case budget > 0 && elapsed > budget:
			check.Status = StatusDegraded
			check.Message = "Self-test slower than expected"
		default:
			check.Status = StatusHealthy
			check.Message = "Self-test passed"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys == 0 {
			check.Status = StatusHealthy
			check.Message = "Memory usage unknown"
			return check
		}

		usagePercent := float64(alloc) / float64(sys) * 100
		check.Details["usage_percent"] = usagePercent

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}

// RuntimeMemoryUsage reads heap allocation and total system memory from the
// Go runtime, for use with MemoryCheck.
func RuntimeMemoryUsage() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
