package loader

import (
	"sync"

	"github.com/dd0wney/workpairs/pkg/logging"
)

// Reporter receives every row the loader rejects. line is 1-based.
type Reporter interface {
	Skip(line int, reason error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(line int, reason error)

// Skip calls f.
func (f ReporterFunc) Skip(line int, reason error) { f(line, reason) }

// MultiReporter fans each skipped row out to every reporter.
func MultiReporter(reporters ...Reporter) Reporter {
	return ReporterFunc(func(line int, reason error) {
		for _, r := range reporters {
			if r != nil {
				r.Skip(line, reason)
			}
		}
	})
}

type nopReporter struct{}

func (nopReporter) Skip(int, error) {}

// LogReporter logs skipped rows at warn level.
type LogReporter struct {
	Logger logging.Logger
}

// NewLogReporter creates a LogReporter.
func NewLogReporter(logger logging.Logger) *LogReporter {
	return &LogReporter{Logger: logger}
}

// Skip logs the rejected row.
func (r *LogReporter) Skip(line int, reason error) {
	r.Logger.Warn("skipping row",
		logging.Line(line),
		logging.String("reason", Reason(reason)),
		logging.Error(reason),
	)
}

// SkippedRow describes one rejected row.
type SkippedRow struct {
	Line   int    `json:"line" yaml:"line"`
	Reason string `json:"reason" yaml:"reason"`
	Detail string `json:"detail" yaml:"detail"`
}

// CollectingReporter keeps every rejection in arrival order.
type CollectingReporter struct {
	mu   sync.Mutex
	rows []SkippedRow
	errs []error
}

// Skip records the rejected row.
func (r *CollectingReporter) Skip(line int, reason error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, SkippedRow{Line: line, Reason: Reason(reason), Detail: reason.Error()})
	r.errs = append(r.errs, reason)
}

// Rows returns a copy of the recorded rejections.
func (r *CollectingReporter) Rows() []SkippedRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SkippedRow{}, r.rows...)
}

// Errors returns the recorded rejection errors.
func (r *CollectingReporter) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// Len returns the number of recorded rejections.
func (r *CollectingReporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
