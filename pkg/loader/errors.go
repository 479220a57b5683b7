package loader

import "github.com/go-faster/errors"

var (
	// ErrEmptyInput is returned when the uploaded file has no content.
	ErrEmptyInput = errors.New("input is empty")

	// ErrTooFewFields marks a row with fewer than four fields.
	ErrTooFewFields = errors.New("too few fields")

	// ErrNonNumericID marks a row whose employee or project id is not an integer.
	ErrNonNumericID = errors.New("non-numeric id")

	// ErrUnknownDateFormat marks a date matching none of the accepted layouts.
	ErrUnknownDateFormat = errors.New("unknown date format")

	// ErrEndBeforeStart marks a row whose end date precedes its start date.
	ErrEndBeforeStart = errors.New("end date before start date")
)

// Reason returns a stable, metric-friendly label for a row rejection error.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTooFewFields):
		return "too_few_fields"
	case errors.Is(err, ErrNonNumericID):
		return "non_numeric_id"
	case errors.Is(err, ErrUnknownDateFormat):
		return "unknown_date_format"
	case errors.Is(err, ErrEndBeforeStart):
		return "end_before_start"
	default:
		return "other"
	}
}
