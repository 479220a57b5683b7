package overlap

import (
	"maps"
	"slices"
)

type pairTotal struct {
	days     int64
	projects map[int64]int64
}

// Accumulation maps each PairKey to the sum of its positive overlaps, with a
// per-project breakdown. It is not safe for concurrent use; concurrent
// producers should each fill their own Accumulation and Merge them.
type Accumulation struct {
	totals map[PairKey]*pairTotal
}

// NewAccumulation returns an empty Accumulation.
func NewAccumulation() *Accumulation {
	return &Accumulation{totals: make(map[PairKey]*pairTotal)}
}

// Add adds days of overlap on projectID to key. Non-positive values are
// ignored so a key is only materialised once it has a positive total.
func (a *Accumulation) Add(key PairKey, projectID, days int64) {
	if days <= 0 {
		return
	}
	t, ok := a.totals[key]
	if !ok {
		t = &pairTotal{projects: make(map[int64]int64, 1)}
		a.totals[key] = t
	}
	t.days += days
	t.projects[projectID] += days
}

// Merge adds every total in other into a. Merging is commutative and
// associative, so shard results can be combined in any order.
func (a *Accumulation) Merge(other *Accumulation) {
	if other == nil {
		return
	}
	for key, t := range other.totals {
		for projectID, days := range t.projects {
			a.Add(key, projectID, days)
		}
	}
}

// Len returns the number of pairs with a positive total.
func (a *Accumulation) Len() int {
	return len(a.totals)
}

// Days returns the accumulated total for key, 0 when absent.
func (a *Accumulation) Days(key PairKey) int64 {
	if t, ok := a.totals[key]; ok {
		return t.days
	}
	return 0
}

// ProjectDays returns a copy of the per-project breakdown for key.
func (a *Accumulation) ProjectDays(key PairKey) map[int64]int64 {
	t, ok := a.totals[key]
	if !ok {
		return map[int64]int64{}
	}
	return maps.Clone(t.projects)
}

// Keys returns all keys in ascending order.
func (a *Accumulation) Keys() []PairKey {
	keys := slices.Collect(maps.Keys(a.totals))
	slices.SortFunc(keys, PairKey.compare)
	return keys
}

// Equal reports whether both accumulations hold the same totals and the same
// per-project breakdowns.
func (a *Accumulation) Equal(other *Accumulation) bool {
	if a.Len() != other.Len() {
		return false
	}
	for key, t := range a.totals {
		o, ok := other.totals[key]
		if !ok || o.days != t.days || !maps.Equal(o.projects, t.projects) {
			return false
		}
	}
	return true
}

func (a *Accumulation) pair(key PairKey) EmployeePair {
	t := a.totals[key]
	projects := make([]ProjectOverlap, 0, len(t.projects))
	for _, id := range slices.Sorted(maps.Keys(t.projects)) {
		projects = append(projects, ProjectOverlap{ProjectID: id, Days: t.projects[id]})
	}

	// Projects is ascending by id, so a strict comparison keeps the lowest
	// id among equally long projects.
	main := projects[0]
	for _, p := range projects[1:] {
		if p.Days > main.Days {
			main = p
		}
	}

	return EmployeePair{
		EmployeeID1:        key.Low,
		EmployeeID2:        key.High,
		DaysWorkedTogether: t.days,
		ProjectID:          main.ProjectID,
		Projects:           projects,
	}
}

// Pairs materialises every key as an EmployeePair, ascending by key.
func (a *Accumulation) Pairs() []EmployeePair {
	keys := a.Keys()
	pairs := make([]EmployeePair, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, a.pair(key))
	}
	return pairs
}

// Longest returns the pair with the strictly greatest total, preferring the
// lowest key on ties, or nil when pairs is empty.
func Longest(pairs []EmployeePair) *EmployeePair {
	var best *EmployeePair
	for i := range pairs {
		p := &pairs[i]
		if best == nil || p.DaysWorkedTogether > best.DaysWorkedTogether ||
			(p.DaysWorkedTogether == best.DaysWorkedTogether && p.Key().Less(best.Key())) {
			best = p
		}
	}
	if best == nil {
		return nil
	}
	longest := *best
	longest.Projects = slices.Clone(best.Projects)
	return &longest
}

// Result converts the accumulation into a Result with its maximum selected.
func (a *Accumulation) Result() *Result {
	pairs := a.Pairs()
	return &Result{
		Pairs:   pairs,
		Longest: Longest(pairs),
	}
}
