package parallel

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/go-faster/errors"
)

// WorkerPool manages a fixed set of worker goroutines draining a task queue.
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu

	panicMu sync.Mutex
	panics  []any
}

var (
	// ErrTooManyWorkers is returned when the worker count exceeds MaxWorkers.
	ErrTooManyWorkers = errors.New("worker count exceeds maximum")

	// ErrTaskPanicked is returned by RunShards when a shard panics.
	ErrTaskPanicked = errors.New("worker task panicked")

	// ErrPoolClosed is returned by RunShards when a shard could not be queued.
	ErrPoolClosed = errors.New("worker pool closed")
)

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// DefaultWorkers is the worker count used when a caller passes 0.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// NewWorkerPool creates a pool with the given number of workers. A
// non-positive count falls back to DefaultWorkers.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
	}
	for i := 0; i < pool.workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}
	return pool, nil
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.run(task)
	}
}

func (wp *WorkerPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			wp.panicMu.Lock()
			wp.panics = append(wp.panics, r)
			wp.panicMu.Unlock()
		}
	}()
	task()
}

// Submit queues a task. It returns false if the pool is closed.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}
	wp.taskQueue <- task
	return true
}

// Close stops accepting tasks and waits for queued tasks to finish. It is safe
// to call more than once.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Wait waits for all submitted tasks to complete. The pool is closed after.
func (wp *WorkerPool) Wait() {
	wp.Close()
}

// Panics returns the values recovered from panicking tasks.
func (wp *WorkerPool) Panics() []any {
	wp.panicMu.Lock()
	defer wp.panicMu.Unlock()
	return append([]any(nil), wp.panics...)
}

// RunShards calls fn once for every shard in [0, shards) on a pool of the
// given size and returns the first error by shard index. A panicking shard
// yields ErrTaskPanicked. Shards observe ctx themselves; RunShards only
// reports ctx.Err() when no shard returned an error of its own.
func RunShards(ctx context.Context, workers, shards int, fn func(ctx context.Context, shard int) error) error {
	if shards <= 0 {
		return ctx.Err()
	}

	pool, err := NewWorkerPool(min(workers, shards))
	if err != nil {
		return err
	}

	errs := make([]error, shards)
	for shard := 0; shard < shards; shard++ {
		if !pool.Submit(func() { errs[shard] = fn(ctx, shard) }) {
			errs[shard] = ErrPoolClosed
		}
	}
	pool.Wait()

	if panics := pool.Panics(); len(panics) > 0 {
		return errors.Wrapf(ErrTaskPanicked, "%v", panics[0])
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}
