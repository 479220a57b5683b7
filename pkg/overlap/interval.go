package overlap

import "time"

const secondsPerDay = 24 * 60 * 60

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayNumber is the number of days since the Unix epoch for t's calendar date.
func dayNumber(t time.Time) int64 {
	return Day(t).Unix() / secondsPerDay
}

// OverlapDays returns the inclusive number of days shared by the closed
// intervals [s1,e1] and [s2,e2]. Disjoint or malformed intervals yield 0.
func OverlapDays(s1, e1, s2, e2 time.Time) int64 {
	start := max(dayNumber(s1), dayNumber(s2))
	end := min(dayNumber(e1), dayNumber(e2))
	if end < start {
		return 0
	}
	return end - start + 1
}

// Overlap returns the inclusive day overlap of two assignments' date ranges.
// Project and employee ids are not consulted.
func Overlap(a, b Assignment) int64 {
	return OverlapDays(a.DateFrom, a.DateTo, b.DateFrom, b.DateTo)
}
