package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newPool(t testing.TB, workers int) *WorkerPool {
	t.Helper()
	pool, err := NewWorkerPool(workers)
	if err != nil {
		t.Fatalf("NewWorkerPool(%d): %v", workers, err)
	}
	return pool
}

// TestWorkerPoolConcurrentSubmissions tests concurrent task submissions
func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool := newPool(t, 10)

	numTasks := 100
	var counter atomic.Int64

	var wg sync.WaitGroup
	for range numTasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Submit(func() { counter.Add(1) })
		}()
	}

	wg.Wait()
	pool.Wait()

	if got := counter.Load(); got != int64(numTasks) {
		t.Errorf("Expected counter %d, got %d", numTasks, got)
	}
}

// TestWorkerPoolCloseRace validates that closing the pool while tasks are
// being submitted doesn't panic.
func TestWorkerPoolCloseRace(t *testing.T) {
	for range 50 {
		pool := newPool(t, 4)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 10 {
					pool.Submit(func() { time.Sleep(time.Millisecond) })
				}
			}()
		}

		time.Sleep(2 * time.Millisecond)
		pool.Close()
		wg.Wait()
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close return false
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := newPool(t, 4)

	if !pool.Submit(func() {}) {
		t.Error("Task submission before close should succeed")
	}

	pool.Close()
	pool.Close()

	if pool.Submit(func() { t.Error("This task should never execute") }) {
		t.Error("Task submission after close should return false")
	}
}

// TestWorkerPoolWithPanic tests that panics in tasks don't crash the pool
func TestWorkerPoolWithPanic(t *testing.T) {
	pool := newPool(t, 4)

	var counter atomic.Int64
	for range 5 {
		pool.Submit(func() { panic("intentional panic") })
	}
	for range 10 {
		pool.Submit(func() { counter.Add(1) })
	}
	pool.Wait()

	if got := counter.Load(); got != 10 {
		t.Errorf("Expected counter 10, got %d", got)
	}
	if got := len(pool.Panics()); got != 5 {
		t.Errorf("Expected 5 recorded panics, got %d", got)
	}
}

func TestRunShardsVisitsEveryShard(t *testing.T) {
	const shards = 37
	seen := make([]int32, shards)

	err := RunShards(context.Background(), 4, shards, func(_ context.Context, shard int) error {
		atomic.AddInt32(&seen[shard], 1)
		return nil
	})
	if err != nil {
		t.Fatalf("RunShards: %v", err)
	}
	for shard, n := range seen {
		if n != 1 {
			t.Errorf("shard %d ran %d times", shard, n)
		}
	}
}

func TestRunShardsReturnsLowestShardError(t *testing.T) {
	errA := errors.New("shard 3 failed")
	errB := errors.New("shard 7 failed")

	err := RunShards(context.Background(), 4, 10, func(_ context.Context, shard int) error {
		switch shard {
		case 7:
			return errB
		case 3:
			return errA
		}
		return nil
	})
	if !errors.Is(err, errA) {
		t.Errorf("RunShards error = %v, want %v", err, errA)
	}
}

func TestRunShardsPanic(t *testing.T) {
	err := RunShards(context.Background(), 2, 4, func(_ context.Context, shard int) error {
		if shard == 2 {
			panic("boom")
		}
		return nil
	})
	if !errors.Is(err, ErrTaskPanicked) {
		t.Errorf("RunShards error = %v, want ErrTaskPanicked", err)
	}
}

func TestRunShardsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	err := RunShards(ctx, 2, 8, func(ctx context.Context, _ int) error {
		ran.Add(1)
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RunShards error = %v, want context.Canceled", err)
	}
}

func TestRunShardsNoShards(t *testing.T) {
	called := false
	err := RunShards(context.Background(), 4, 0, func(context.Context, int) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Errorf("RunShards with no shards: err=%v called=%v", err, called)
	}
}

// BenchmarkRunShards measures scheduling overhead per shard.
func BenchmarkRunShards(b *testing.B) {
	for range b.N {
		_ = RunShards(context.Background(), 8, 64, func(context.Context, int) error {
			sum := 0
			for j := range 100 {
				sum += j
			}
			_ = sum
			return nil
		})
	}
}
