package overlap

import (
	"container/heap"
	"context"
	"slices"
	"time"
)

// activeSet is a min-heap of assignments ordered by DateTo, so every record
// that ended before a given day sits at the root until it is evicted.
type activeSet []Assignment

func (h activeSet) Len() int           { return len(h) }
func (h activeSet) Less(i, j int) bool { return dayNumber(h[i].DateTo) < dayNumber(h[j].DateTo) }
func (h activeSet) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *activeSet) Push(x any) {
	*h = append(*h, x.(Assignment))
}

func (h *activeSet) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// evictBefore removes every record whose end day is strictly before start.
func (h *activeSet) evictBefore(start time.Time) {
	day := dayNumber(start)
	for h.Len() > 0 && dayNumber((*h)[0].DateTo) < day {
		heap.Pop(h)
	}
}

func sweepLine(ctx context.Context, records []Assignment) (*Accumulation, int64, error) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Assignment) int {
		return Day(a.DateFrom).Compare(Day(b.DateFrom))
	})

	acc := NewAccumulation()
	active := make(map[int64]*activeSet)
	var comparisons int64

	for i, r := range sorted {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, comparisons, err
			}
		}

		set, ok := active[r.ProjectID]
		if !ok {
			set = &activeSet{}
			active[r.ProjectID] = set
		}

		// Later records start no earlier than r, so anything that ended
		// before r started can never overlap them either.
		set.evictBefore(r.DateFrom)

		for _, other := range *set {
			comparisons++
			accumulatePair(acc, other, r)
		}
		heap.Push(set, r)
	}

	return acc, comparisons, nil
}

// SweepLine accumulates overlaps by processing records in start-date order
// while keeping, per project, only the records that have not yet ended. The
// result is identical to BruteForce.
func SweepLine(records []Assignment) *Accumulation {
	acc, _, _ := sweepLine(context.Background(), records)
	return acc
}
