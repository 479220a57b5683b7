// Package loader turns uploaded CSV or XLSX files into validated
// assignments. Rows that cannot be used are reported, never fatal.
package loader

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"

	"github.com/dd0wney/workpairs/pkg/clock"
	"github.com/dd0wney/workpairs/pkg/logging"
	"github.com/dd0wney/workpairs/pkg/overlap"
)

// Format is the detected container format of an input file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DetectFormat picks XLSX for a .xlsx name or spreadsheet content and CSV for
// everything else.
func DetectFormat(name string, data []byte) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	if mimetype.Detect(data).Is(xlsxMIME) {
		return FormatXLSX
	}
	return FormatCSV
}

type row struct {
	line   int
	fields []string
}

// Loader parses assignment files.
type Loader struct {
	clock    clock.Clock
	reporter Reporter
	logger   logging.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithClock sets the clock used to resolve open-ended assignments.
func WithClock(c clock.Clock) Option {
	return func(l *Loader) { l.clock = c }
}

// WithReporter sets the sink for rejected rows.
func WithReporter(r Reporter) Option {
	return func(l *Loader) { l.reporter = r }
}

// WithLogger sets the logger used for load summaries.
func WithLogger(logger logging.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a Loader. Defaults are the system clock and no reporting.
func New(opts ...Option) *Loader {
	l := &Loader{
		clock:    clock.RealClock{},
		reporter: nopReporter{},
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every row from r and returns the valid assignments in file
// order. name is only used for format detection. A file with no valid rows
// yields an empty slice and no error.
func (l *Loader) Load(ctx context.Context, r io.Reader, name string) ([]overlap.Assignment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	format := DetectFormat(name, data)
	var rows []row
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(data)
	default:
		rows, err = readCSV(data)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", format)
	}

	today := clock.Today(l.clock)
	records := make([]overlap.Assignment, 0, len(rows))
	skipped := 0
	for i, rw := range rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		a, err := parseRow(rw.fields, today)
		if err != nil {
			skipped++
			l.reporter.Skip(rw.line, err)
			continue
		}
		records = append(records, a)
	}

	l.logger.Info("file loaded",
		logging.File(name),
		logging.String("format", string(format)),
		logging.Count(len(records)),
		logging.Int("skipped", skipped),
	)
	return records, nil
}
