package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dd0wney/workpairs/pkg/overlap"
)

// DateLayouts are the accepted date formats, tried in order: ISO
// (yyyy-MM-dd), US (MM/dd/yyyy) and European (dd-MM-yyyy).
var DateLayouts = []string{"2006-01-02", "1/2/2006", "2-1-2006"}

// openEnded is the end-date marker for an assignment that is still running.
const openEnded = "NULL"

// ParseDate parses s with the first matching layout in DateLayouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownDateFormat, s)
}

func parseID(field, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrNonNumericID, field, s)
	}
	return id, nil
}

// parseRow converts one row into an assignment. Fields past the fourth are
// ignored. An empty or NULL end date resolves to today.
func parseRow(fields []string, today time.Time) (overlap.Assignment, error) {
	if len(fields) < 4 {
		return overlap.Assignment{}, fmt.Errorf("%w: got %d, want 4", ErrTooFewFields, len(fields))
	}

	empID, err := parseID("employee id", fields[0])
	if err != nil {
		return overlap.Assignment{}, err
	}
	projectID, err := parseID("project id", fields[1])
	if err != nil {
		return overlap.Assignment{}, err
	}

	from, err := ParseDate(fields[2])
	if err != nil {
		return overlap.Assignment{}, err
	}

	to := today
	if end := strings.TrimSpace(fields[3]); end != "" && !strings.EqualFold(end, openEnded) {
		if to, err = ParseDate(end); err != nil {
			return overlap.Assignment{}, err
		}
	}

	if to.Before(from) {
		return overlap.Assignment{}, fmt.Errorf("%w: %s < %s",
			ErrEndBeforeStart, to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	return overlap.NewAssignment(empID, projectID, from, to), nil
}
