// Package overlap computes how long pairs of employees worked together.
//
// Given a slice of Assignment records (employee, project, inclusive date
// range), the package sums, for every unordered pair of distinct employees,
// the inclusive day overlap of each pair of their assignments on a shared
// project. The result lists every pair with a positive total and the single
// pair with the greatest total.
//
// Three interchangeable strategies produce identical accumulations:
//
//   - BruteForce compares every unordered pair of records, O(n²).
//   - SweepLine sorts records by start date and compares each record only
//     against the still-active records of its project, evicting records that
//     ended before the current start date.
//   - Parallel shards the brute-force comparison space across a worker pool
//     and merges the per-shard accumulations.
//
// Engine wraps the strategies with cancellation, metrics and logging:
//
//	engine := overlap.NewEngine(overlap.WithStrategy(overlap.StrategySweepLine))
//	result, err := engine.Compute(ctx, records)
//	if err != nil {
//		// only returned when ctx was cancelled
//	}
//	if result.Longest != nil {
//		fmt.Println(result.Longest.EmployeeID1, result.Longest.EmployeeID2)
//	}
package overlap
