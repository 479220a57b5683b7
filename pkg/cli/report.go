package cli

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/workpairs/pkg/loader"
	"github.com/dd0wney/workpairs/pkg/overlap"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var outputFormats = []string{outputTable, outputJSON, outputYAML}

// ProjectReport is one project's share of a pair's overlap.
type ProjectReport struct {
	ProjectID int64 `json:"projectId" yaml:"projectId"`
	Days      int64 `json:"days" yaml:"days"`
}

// PairReport is one employee pair in a report.
type PairReport struct {
	EmployeeID1 int64           `json:"employeeId1" yaml:"employeeId1"`
	EmployeeID2 int64           `json:"employeeId2" yaml:"employeeId2"`
	ProjectID   int64           `json:"projectId" yaml:"projectId"`
	Days        int64           `json:"daysWorkedTogether" yaml:"daysWorkedTogether"`
	Projects    []ProjectReport `json:"projects" yaml:"projects"`
}

// StatsReport describes how the computation ran.
type StatsReport struct {
	Strategy    string `json:"strategy" yaml:"strategy"`
	Records     int    `json:"records" yaml:"records"`
	Skipped     int    `json:"skipped" yaml:"skipped"`
	Pairs       int    `json:"pairs" yaml:"pairs"`
	Comparisons int64  `json:"comparisons" yaml:"comparisons"`
	Duration    string `json:"duration" yaml:"duration"`
}

// Report is the analyze command's result. Pairs is only filled with --all.
type Report struct {
	File        string              `json:"file" yaml:"file"`
	Longest     *PairReport         `json:"longestWorkingPair" yaml:"longestWorkingPair"`
	Pairs       []PairReport        `json:"pairs,omitempty" yaml:"pairs,omitempty"`
	SkippedRows []loader.SkippedRow `json:"skippedRows" yaml:"skippedRows"`
	Stats       StatsReport         `json:"stats" yaml:"stats"`
}

func pairReport(p overlap.EmployeePair) PairReport {
	projects := make([]ProjectReport, len(p.Projects))
	for i, po := range p.Projects {
		projects[i] = ProjectReport{ProjectID: po.ProjectID, Days: po.Days}
	}
	return PairReport{
		EmployeeID1: p.EmployeeID1,
		EmployeeID2: p.EmployeeID2,
		ProjectID:   p.ProjectID,
		Days:        p.DaysWorkedTogether,
		Projects:    projects,
	}
}

// newReport shapes result for output. With all set, every pair is listed,
// longest first.
func newReport(file string, result *overlap.Result, skipped []loader.SkippedRow, all bool) Report {
	if skipped == nil {
		skipped = []loader.SkippedRow{}
	}
	r := Report{
		File:        file,
		SkippedRows: skipped,
		Stats: StatsReport{
			Strategy:    string(result.Stats.Strategy),
			Records:     result.Stats.Records,
			Skipped:     len(skipped),
			Pairs:       len(result.Pairs),
			Comparisons: result.Stats.Comparisons,
			Duration:    result.Stats.Duration.Round(time.Microsecond).String(),
		},
	}
	if result.Longest != nil {
		longest := pairReport(*result.Longest)
		r.Longest = &longest
	}
	if all {
		r.Pairs = make([]PairReport, 0, len(result.Pairs))
		for _, p := range result.Pairs {
			r.Pairs = append(r.Pairs, pairReport(p))
		}
		slices.SortStableFunc(r.Pairs, func(a, b PairReport) int {
			return cmp.Compare(b.Days, a.Days)
		})
	}
	return r
}

func writeReport(w io.Writer, r Report, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "encode json")
		}
		return nil
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return nil
	case outputTable:
		writeTable(w, r)
		return nil
	default:
		return errors.Errorf("unknown output format %q (want one of %v)", format, outputFormats)
	}
}

var pairHeaders = []string{"Employee ID #1", "Employee ID #2", "Project ID", "Days worked"}

func pairRow(p PairReport) []string {
	return []string{
		strconv.FormatInt(p.EmployeeID1, 10),
		strconv.FormatInt(p.EmployeeID2, 10),
		strconv.FormatInt(p.ProjectID, 10),
		strconv.FormatInt(p.Days, 10),
	}
}

func writeTable(w io.Writer, r Report) {
	printSection(w, "Longest working pair")
	if r.Longest == nil {
		printWarning(w, "No two employees worked on the same project at the same time.")
	} else {
		renderTable(w, pairHeaders, [][]string{pairRow(*r.Longest)})
		if len(r.Longest.Projects) > 1 {
			rows := make([][]string, 0, len(r.Longest.Projects))
			for _, p := range r.Longest.Projects {
				rows = append(rows, []string{strconv.FormatInt(p.ProjectID, 10), strconv.FormatInt(p.Days, 10)})
			}
			renderTable(w, []string{"Project ID", "Days"}, rows)
		}
	}

	if r.Pairs != nil {
		printSection(w, fmt.Sprintf("All pairs (%d)", len(r.Pairs)))
		rows := make([][]string, 0, len(r.Pairs))
		for _, p := range r.Pairs {
			rows = append(rows, pairRow(p))
		}
		renderTable(w, pairHeaders, rows)
	}

	printSection(w, "Summary")
	printLabelValue(w, "File", r.File)
	printLabelValue(w, "Strategy", r.Stats.Strategy)
	printLabelValue(w, "Records", strconv.Itoa(r.Stats.Records))
	printLabelValue(w, "Pairs", strconv.Itoa(r.Stats.Pairs))
	printLabelValue(w, "Comparisons", strconv.FormatInt(r.Stats.Comparisons, 10))
	printLabelValue(w, "Duration", r.Stats.Duration)
	fmt.Fprintln(w)

	if len(r.SkippedRows) == 0 {
		printSuccess(w, "All rows loaded")
		return
	}
	printWarning(w, fmt.Sprintf("%d rows skipped", len(r.SkippedRows)))
	for _, s := range r.SkippedRows {
		_, _ = dimColor.Fprintf(w, "  line %d: %s\n", s.Line, s.Detail)
	}
}
