package overlap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/dd0wney/workpairs/pkg/logging"
)

// Strategy selects the algorithm used to accumulate overlaps.
type Strategy string

const (
	// StrategyAuto uses brute force for small inputs and sweep-line otherwise.
	StrategyAuto Strategy = "auto"
	// StrategyBruteForce compares every unordered pair of records.
	StrategyBruteForce Strategy = "brute-force"
	// StrategySweepLine sorts by start date and keeps a per-project active set.
	StrategySweepLine Strategy = "sweep-line"
	// StrategyParallel shards the brute-force scan across a worker pool.
	StrategyParallel Strategy = "parallel"
)

// DefaultBruteForceThreshold is the record count at which StrategyAuto
// switches from brute force to sweep-line.
const DefaultBruteForceThreshold = 512

// Strategies lists every accepted strategy name.
func Strategies() []Strategy {
	return []Strategy{StrategyAuto, StrategyBruteForce, StrategySweepLine, StrategyParallel}
}

// ParseStrategy maps a case-insensitive name to a Strategy. An empty name
// yields StrategyAuto.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	if s == "" {
		return StrategyAuto, nil
	}
	for _, known := range Strategies() {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func (s Strategy) String() string { return string(s) }

// Recorder receives one observation per finished or abandoned computation.
// metrics.Registry implements it.
type Recorder interface {
	RecordComputation(strategy, status string, records int, comparisons int64, pairs int, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordComputation(string, string, int, int64, int, time.Duration) {}

// Engine runs overlap computations with a fixed configuration. It holds no
// mutable state, so concurrent Compute calls are safe.
type Engine struct {
	strategy  Strategy
	workers   int
	threshold int
	logger    logging.Logger
	recorder  Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategy sets the default strategy used by Compute.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) { e.strategy = s }
}

// WithWorkers sets the pool size for StrategyParallel. 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithBruteForceThreshold sets the StrategyAuto switch-over point.
func WithBruteForceThreshold(n int) Option {
	return func(e *Engine) { e.threshold = n }
}

// WithLogger sets the logger used for computation summaries.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine creates an Engine. Without options it uses StrategyAuto, no
// logging and no metrics.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		strategy:  StrategyAuto,
		threshold: DefaultBruteForceThreshold,
		logger:    logging.NewNopLogger(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.strategy == "" {
		e.strategy = StrategyAuto
	}
	if e.logger == nil {
		e.logger = logging.NewNopLogger()
	}
	if e.recorder == nil {
		e.recorder = nopRecorder{}
	}
	return e
}

// Strategy returns the engine's default strategy.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Compute runs the engine's default strategy over records.
func (e *Engine) Compute(ctx context.Context, records []Assignment) (*Result, error) {
	return e.ComputeWith(ctx, e.strategy, records)
}

// ComputeWith runs the given strategy over records. records is never
// modified. When ctx is cancelled before the computation finishes it returns
// ErrComputationAbandoned and no result.
func (e *Engine) ComputeWith(ctx context.Context, strategy Strategy, records []Assignment) (*Result, error) {
	resolved := e.resolve(strategy, len(records))
	if resolved == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(strategy))
	}

	log := e.logger.With(
		logging.RunID(uuid.NewString()),
		logging.Strategy(string(resolved)),
	)
	log.Debug("overlap computation started", logging.Count(len(records)))

	start := time.Now()
	acc, comparisons, err := e.run(ctx, resolved, records)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() == nil {
			// A shard panicked; nothing was cancelled.
			e.recorder.RecordComputation(string(resolved), "error", len(records), comparisons, 0, elapsed)
			log.Error("overlap computation failed", logging.Error(err), logging.Latency(elapsed))
			return nil, errors.Wrap(err, "compute overlaps")
		}
		e.recorder.RecordComputation(string(resolved), "abandoned", len(records), comparisons, 0, elapsed)
		log.Warn("overlap computation abandoned",
			logging.Error(err),
			logging.Int64("comparisons", comparisons),
			logging.Latency(elapsed),
		)
		return nil, fmt.Errorf("%w: %w", ErrComputationAbandoned, err)
	}

	result := acc.Result()
	result.Stats = Stats{
		Strategy:    resolved,
		Records:     len(records),
		Comparisons: comparisons,
		Duration:    elapsed,
	}

	e.recorder.RecordComputation(string(resolved), "ok", len(records), comparisons, len(result.Pairs), elapsed)

	fields := []logging.Field{
		logging.Count(len(records)),
		logging.Int64("comparisons", comparisons),
		logging.Int("pairs", len(result.Pairs)),
		logging.Latency(elapsed),
	}
	if result.Longest != nil {
		fields = append(fields,
			logging.String("longest_pair", result.Longest.Key().String()),
			logging.Int64("longest_days", result.Longest.DaysWorkedTogether),
		)
	}
	log.Info("overlap computation finished", fields...)

	return result, nil
}

// resolve maps StrategyAuto to a concrete strategy and rejects unknown names.
func (e *Engine) resolve(s Strategy, n int) Strategy {
	switch s {
	case StrategyAuto, "":
		if n < e.threshold {
			return StrategyBruteForce
		}
		return StrategySweepLine
	case StrategyBruteForce, StrategySweepLine, StrategyParallel:
		return s
	default:
		return ""
	}
}

func (e *Engine) run(ctx context.Context, s Strategy, records []Assignment) (*Accumulation, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	switch s {
	case StrategySweepLine:
		return sweepLine(ctx, records)
	case StrategyParallel:
		return parallelBruteForce(ctx, records, e.workers)
	default:
		return bruteForce(ctx, records)
	}
}

// Aggregate runs strategy over records without logging or metrics and returns
// the pairs together with the longest one. StrategyAuto uses the default
// threshold.
func Aggregate(strategy Strategy, records []Assignment) (*Result, error) {
	return NewEngine().ComputeWith(context.Background(), strategy, records)
}
