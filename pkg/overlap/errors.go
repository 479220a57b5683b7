package overlap

import "github.com/go-faster/errors"

var (
	// ErrComputationAbandoned is returned when the context is cancelled before
	// a computation finishes. No partial result accompanies it.
	ErrComputationAbandoned = errors.New("overlap computation abandoned")

	// ErrUnknownStrategy is returned by ParseStrategy for unrecognised names.
	ErrUnknownStrategy = errors.New("unknown overlap strategy")
)
