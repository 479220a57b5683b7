package overlap

import (
	"context"
	"sync/atomic"

	"github.com/dd0wney/workpairs/pkg/parallel"
)

// shardsPerWorker oversubscribes the pool so rows of uneven cost (early rows
// compare against more records) spread across workers.
const shardsPerWorker = 4

func parallelBruteForce(ctx context.Context, records []Assignment, workers int) (*Accumulation, int64, error) {
	if workers <= 0 {
		workers = parallel.DefaultWorkers()
	}
	shards := min(workers*shardsPerWorker, len(records))
	if shards <= 1 {
		return bruteForce(ctx, records)
	}

	partials := make([]*Accumulation, shards)
	var comparisons atomic.Int64

	err := parallel.RunShards(ctx, workers, shards, func(ctx context.Context, shard int) error {
		acc := NewAccumulation()
		n, err := bruteForceRows(ctx, records, shard, shards, acc)
		comparisons.Add(n)
		if err != nil {
			return err
		}
		partials[shard] = acc
		return nil
	})
	if err != nil {
		return nil, comparisons.Load(), err
	}

	acc := NewAccumulation()
	for _, partial := range partials {
		acc.Merge(partial)
	}
	return acc, comparisons.Load(), nil
}

// Parallel accumulates overlaps like BruteForce, splitting the outer rows
// into interleaved shards evaluated on a pool of the given size (0 means
// GOMAXPROCS). Shard accumulations are merged by per-key addition. The error
// is non-nil only when a shard panicked, and then wraps
// parallel.ErrTaskPanicked.
func Parallel(records []Assignment, workers int) (*Accumulation, error) {
	acc, _, err := parallelBruteForce(context.Background(), records, workers)
	if err != nil {
		return nil, err
	}
	return acc, nil
}
