package overlap

import "context"

// cancelCheckInterval is how many outer rows run between context checks.
const cancelCheckInterval = 64

// accumulatePair adds the overlap of r1 and r2 to acc when they share a
// project and belong to different employees. It reports whether the records
// formed a candidate pair.
func accumulatePair(acc *Accumulation, r1, r2 Assignment) bool {
	if r1.ProjectID != r2.ProjectID || r1.EmployeeID == r2.EmployeeID {
		return false
	}
	acc.Add(NewPairKey(r1.EmployeeID, r2.EmployeeID), r1.ProjectID, Overlap(r1, r2))
	return true
}

// bruteForceRows compares every row i in rows (i ≡ offset mod stride) with
// every later record. With offset 0 and stride 1 it covers every unordered
// pair exactly once.
func bruteForceRows(ctx context.Context, records []Assignment, offset, stride int, acc *Accumulation) (int64, error) {
	var comparisons int64
	for i, n := offset, 0; i < len(records); i, n = i+stride, n+1 {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return comparisons, err
			}
		}
		r1 := records[i]
		for _, r2 := range records[i+1:] {
			comparisons++
			accumulatePair(acc, r1, r2)
		}
	}
	return comparisons, nil
}

func bruteForce(ctx context.Context, records []Assignment) (*Accumulation, int64, error) {
	acc := NewAccumulation()
	comparisons, err := bruteForceRows(ctx, records, 0, 1, acc)
	if err != nil {
		return nil, comparisons, err
	}
	return acc, comparisons, nil
}

// BruteForce accumulates overlaps by comparing every unordered pair of
// records. It is the reference implementation for the other strategies.
func BruteForce(records []Assignment) *Accumulation {
	acc, _, _ := bruteForce(context.Background(), records)
	return acc
}
