package api

import (
	"time"

	"github.com/dd0wney/workpairs/pkg/loader"
	"github.com/dd0wney/workpairs/pkg/overlap"
)

// API Request/Response Types

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AssignmentResponse is one accepted input row with calendar dates.
type AssignmentResponse struct {
	EmployeeID int64  `json:"empId"`
	ProjectID  int64  `json:"projectId"`
	DateFrom   string `json:"dateFrom"`
	DateTo     string `json:"dateTo"`
}

// UploadStats summarises how an upload was processed.
type UploadStats struct {
	Strategy    string  `json:"strategy"`
	Records     int     `json:"records"`
	Skipped     int     `json:"skipped"`
	Pairs       int     `json:"pairs"`
	Comparisons int64   `json:"comparisons"`
	DurationMS  float64 `json:"durationMs"`
}

// UploadResponse is the body returned for a processed upload.
// LongestWorkingPair is null when no two employees overlapped.
type UploadResponse struct {
	EmployeeProjects   []AssignmentResponse   `json:"employeeProjects"`
	LongestWorkingPair *overlap.EmployeePair  `json:"longestWorkingPair"`
	Pairs              []overlap.EmployeePair `json:"pairs"`
	SkippedRows        []loader.SkippedRow    `json:"skippedRows"`
	Stats              UploadStats            `json:"stats"`
}

func assignmentToResponse(a overlap.Assignment) AssignmentResponse {
	return AssignmentResponse{
		EmployeeID: a.EmployeeID,
		ProjectID:  a.ProjectID,
		DateFrom:   a.DateFrom.Format(time.DateOnly),
		DateTo:     a.DateTo.Format(time.DateOnly),
	}
}

func newUploadResponse(records []overlap.Assignment, result *overlap.Result, skipped []loader.SkippedRow) UploadResponse {
	projects := make([]AssignmentResponse, len(records))
	for i, a := range records {
		projects[i] = assignmentToResponse(a)
	}

	pairs := result.Pairs
	if pairs == nil {
		pairs = []overlap.EmployeePair{}
	}
	if skipped == nil {
		skipped = []loader.SkippedRow{}
	}

	return UploadResponse{
		EmployeeProjects:   projects,
		LongestWorkingPair: result.Longest,
		Pairs:              pairs,
		SkippedRows:        skipped,
		Stats: UploadStats{
			Strategy:    string(result.Stats.Strategy),
			Records:     result.Stats.Records,
			Skipped:     len(skipped),
			Pairs:       len(pairs),
			Comparisons: result.Stats.Comparisons,
			DurationMS:  float64(result.Stats.Duration) / float64(time.Millisecond),
		},
	}
}
