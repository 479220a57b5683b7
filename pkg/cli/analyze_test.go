package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/workpairs/pkg/clock"
	"github.com/dd0wney/workpairs/pkg/loader"
	"github.com/dd0wney/workpairs/pkg/overlap"
)

const scenarioCSV = `EmpID,ProjectID,DateFrom,DateTo
143,12,2013-01-11,2014-05-01
218,12,2013-05-01,2014-05-01
143,10,2009-01-01,2012-05-27
218,10,2009-01-01,2012-05-27
`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAnalyzeTable(t *testing.T) {
	path := writeInput(t, "employees.csv", scenarioCSV)

	out, _, err := execute(t, "analyze", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Longest working pair")
	assert.Contains(t, out, "Employee ID #1")
	assert.Contains(t, out, "143")
	assert.Contains(t, out, "218")
	assert.Contains(t, out, "1609")
	assert.Contains(t, out, "1243")
	assert.Contains(t, out, "1 rows skipped")
	assert.Contains(t, out, "line 1:")
	assert.NotContains(t, out, "All pairs")
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeInput(t, "employees.csv", scenarioCSV)

	out, _, err := execute(t, "analyze", path, "--output", "json", "--strategy", "sweep-line")
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Longest)
	assert.Equal(t, int64(1609), report.Longest.Days)
	assert.Equal(t, int64(10), report.Longest.ProjectID)
	assert.Equal(t, []ProjectReport{{10, 1243}, {12, 366}}, report.Longest.Projects)
	assert.Equal(t, "sweep-line", report.Stats.Strategy)
	assert.Equal(t, 4, report.Stats.Records)
	require.Len(t, report.SkippedRows, 1)
	assert.Equal(t, "non_numeric_id", report.SkippedRows[0].Reason)
	assert.Nil(t, report.Pairs)
}

func TestAnalyzeYAMLAll(t *testing.T) {
	csv := `1,1,2020-01-01,2020-01-10
2,1,2020-01-01,2020-01-10
3,1,2020-01-05,2020-01-10
`
	path := writeInput(t, "employees.csv", csv)

	out, _, err := execute(t, "analyze", path, "-o", "yaml", "--all", "--strategy", "parallel", "--workers", "2")
	require.NoError(t, err)

	var report Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	require.Len(t, report.Pairs, 3)
	assert.Equal(t, int64(10), report.Pairs[0].Days)
	assert.Equal(t, int64(1), report.Pairs[0].EmployeeID1)
	assert.Equal(t, int64(2), report.Pairs[0].EmployeeID2)
	for i := 1; i < len(report.Pairs); i++ {
		assert.GreaterOrEqual(t, report.Pairs[i-1].Days, report.Pairs[i].Days)
	}
	assert.Equal(t, "parallel", report.Stats.Strategy)
	assert.Empty(t, report.SkippedRows)
}

func TestAnalyzeAllTable(t *testing.T) {
	path := writeInput(t, "employees.csv", "1,1,2020-01-01,2020-01-10\n2,1,2020-01-01,2020-01-10\n")

	out, _, err := execute(t, "analyze", path, "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "All pairs (1)")
	assert.Contains(t, out, "All rows loaded")
}

func TestAnalyzeNoPairs(t *testing.T) {
	path := writeInput(t, "employees.csv", "1,1,2020-01-01,2020-01-10\n2,2,2020-01-01,2020-01-10\n")

	out, _, err := execute(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No two employees worked on the same project")
}

func TestAnalyzeOpenEnded(t *testing.T) {
	prev := analyzeClock
	t.Cleanup(func() { analyzeClock = prev })
	analyzeClock = clock.NewFakeClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

	path := writeInput(t, "employees.csv", "1,1,2024-03-01,NULL\n2,1,2024-03-11,\n")

	out, _, err := execute(t, "analyze", path, "-o", "json")
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Longest)
	assert.Equal(t, int64(5), report.Longest.Days)
}

func TestAnalyzeErrors(t *testing.T) {
	valid := writeInput(t, "employees.csv", scenarioCSV)
	empty := writeInput(t, "empty.csv", "")

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"unknown strategy", []string{"analyze", valid, "--strategy", "quantum"}, overlap.ErrUnknownStrategy},
		{"empty file", []string{"analyze", empty}, loader.ErrEmptyInput},
		{"missing file", []string{"analyze", filepath.Join(t.TempDir(), "nope.csv")}, os.ErrNotExist},
		{"unknown output", []string{"analyze", valid, "--output", "xml"}, nil},
		{"no file argument", []string{"analyze"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target), "error %v should match %v", err, tt.target)
			}
		})
	}
}

func TestAnalyzeVerboseLogsToStderr(t *testing.T) {
	path := writeInput(t, "employees.csv", scenarioCSV)

	_, stderr, err := execute(t, "analyze", path, "--verbose", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "skipping row")
	assert.Contains(t, stderr, "overlap computation finished")
}
