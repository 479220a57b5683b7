package overlap

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func assign(emp, project int64, from, to string) Assignment {
	return NewAssignment(emp, project, date(from), date(to))
}

func TestOverlapDays(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 string
		want           int64
	}{
		{"identical single day", "2020-01-01", "2020-01-01", "2020-01-01", "2020-01-01", 1},
		{"touching endpoints", "2020-01-01", "2020-01-10", "2020-01-10", "2020-01-20", 1},
		{"adjacent days", "2020-01-01", "2020-01-09", "2020-01-10", "2020-01-20", 0},
		{"disjoint", "2013-01-11", "2013-05-01", "2013-06-01", "2014-05-01", 0},
		{"contained", "2020-01-01", "2020-12-31", "2020-03-01", "2020-03-31", 31},
		{"partial", "2013-01-11", "2014-05-01", "2013-05-01", "2014-05-01", 366},
		{"leap year span", "2009-01-01", "2012-05-27", "2009-01-01", "2012-05-27", 1243},
		{"malformed first interval", "2020-02-01", "2020-01-01", "2020-01-01", "2020-03-01", 0},
		{"both malformed", "2020-02-01", "2020-01-01", "2020-02-01", "2020-01-01", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverlapDays(date(tt.s1), date(tt.e1), date(tt.s2), date(tt.e2))
			if got != tt.want {
				t.Errorf("OverlapDays() = %d, want %d", got, tt.want)
			}

			swapped := OverlapDays(date(tt.s2), date(tt.e2), date(tt.s1), date(tt.e1))
			if swapped != got {
				t.Errorf("OverlapDays() not symmetric: %d vs %d", got, swapped)
			}
		})
	}
}

func TestOverlapIgnoresTimeOfDay(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*60*60)
	a := Assignment{
		EmployeeID: 1, ProjectID: 1,
		DateFrom: time.Date(2020, 1, 1, 23, 59, 0, 0, zone),
		DateTo:   time.Date(2020, 1, 2, 0, 1, 0, 0, zone),
	}
	b := assign(2, 1, "2020-01-02", "2020-01-05")

	if got := Overlap(a, b); got != 1 {
		t.Errorf("Overlap() = %d, want 1", got)
	}
}

func TestDay(t *testing.T) {
	in := time.Date(2021, 7, 4, 18, 30, 0, 0, time.FixedZone("X", -7*60*60))
	got := Day(in)
	want := time.Date(2021, 7, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Day() = %v, want %v", got, want)
	}
}

func TestNewPairKey(t *testing.T) {
	if NewPairKey(218, 143) != NewPairKey(143, 218) {
		t.Fatal("NewPairKey must not depend on argument order")
	}
	k := NewPairKey(218, 143)
	if k.Low != 143 || k.High != 218 {
		t.Errorf("NewPairKey() = %v, want {143 218}", k)
	}
	if k.String() != "143,218" {
		t.Errorf("String() = %q", k.String())
	}
}

func TestPairKeyLess(t *testing.T) {
	tests := []struct {
		a, b PairKey
		want bool
	}{
		{PairKey{1, 2}, PairKey{1, 3}, true},
		{PairKey{1, 3}, PairKey{1, 2}, false},
		{PairKey{1, 9}, PairKey{2, 3}, true},
		{PairKey{2, 3}, PairKey{2, 3}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Less(tt.b); got != tt.want {
			t.Errorf("%v.Less(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
