package overlap

import (
	"fmt"
	"time"
)

// Assignment is one employee's tenure on one project over a closed date
// interval. DateFrom and DateTo are calendar dates; any time-of-day or zone
// component is ignored.
type Assignment struct {
	EmployeeID int64     `json:"empId"`
	ProjectID  int64     `json:"projectId"`
	DateFrom   time.Time `json:"dateFrom"`
	DateTo     time.Time `json:"dateTo"`
}

// NewAssignment builds an Assignment with both dates normalised to UTC
// midnight.
func NewAssignment(employeeID, projectID int64, from, to time.Time) Assignment {
	return Assignment{
		EmployeeID: employeeID,
		ProjectID:  projectID,
		DateFrom:   Day(from),
		DateTo:     Day(to),
	}
}

func (a Assignment) String() string {
	return fmt.Sprintf("emp=%d project=%d %s..%s",
		a.EmployeeID, a.ProjectID, a.DateFrom.Format(time.DateOnly), a.DateTo.Format(time.DateOnly))
}

// PairKey identifies an unordered pair of distinct employees. Low is always
// the smaller id.
type PairKey struct {
	Low  int64
	High int64
}

// NewPairKey returns the canonical key for employees a and b regardless of
// argument order.
func NewPairKey(a, b int64) PairKey {
	if a < b {
		return PairKey{Low: a, High: b}
	}
	return PairKey{Low: b, High: a}
}

// Less orders keys lexicographically by (Low, High).
func (k PairKey) Less(other PairKey) bool {
	if k.Low != other.Low {
		return k.Low < other.Low
	}
	return k.High < other.High
}

func (k PairKey) compare(other PairKey) int {
	switch {
	case k.Less(other):
		return -1
	case other.Less(k):
		return 1
	default:
		return 0
	}
}

func (k PairKey) String() string {
	return fmt.Sprintf("%d,%d", k.Low, k.High)
}

// ProjectOverlap is the overlap a pair accumulated on a single project.
type ProjectOverlap struct {
	ProjectID int64 `json:"projectId"`
	Days      int64 `json:"days"`
}

// EmployeePair is one aggregated result row. EmployeeID1 < EmployeeID2.
//
// ProjectID is the contributing project with the most overlap days (lowest
// id on ties). Projects lists every contributing project.
type EmployeePair struct {
	EmployeeID1        int64            `json:"employeeId1"`
	EmployeeID2        int64            `json:"employeeId2"`
	DaysWorkedTogether int64            `json:"daysWorkedTogether"`
	ProjectID          int64            `json:"projectId"`
	Projects           []ProjectOverlap `json:"projects"`
}

// Key returns the pair's canonical key.
func (p EmployeePair) Key() PairKey {
	return PairKey{Low: p.EmployeeID1, High: p.EmployeeID2}
}

// Stats describes how a computation ran.
type Stats struct {
	Strategy    Strategy      `json:"strategy"`
	Records     int           `json:"records"`
	Comparisons int64         `json:"comparisons"`
	Duration    time.Duration `json:"durationNs"`
}

// Result is the output of one computation. Longest is nil when no pair has a
// positive overlap.
type Result struct {
	Pairs   []EmployeePair `json:"pairs"`
	Longest *EmployeePair  `json:"longestWorkingPair"`
	Stats   Stats          `json:"stats"`
}
