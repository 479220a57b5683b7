package cli

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/dd0wney/workpairs/pkg/clock"
	"github.com/dd0wney/workpairs/pkg/config"
	"github.com/dd0wney/workpairs/pkg/loader"
	"github.com/dd0wney/workpairs/pkg/logging"
	"github.com/dd0wney/workpairs/pkg/overlap"
)

// analyzeClock resolves open-ended assignments; tests replace it.
var analyzeClock clock.Clock = clock.RealClock{}

type analyzeOptions struct {
	strategy string
	output   string
	workers  int
	all      bool
	verbose  bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Find the longest working pair in a CSV or XLSX file",
		Long: `Analyze loads a CSV or XLSX file of EmpID, ProjectID, DateFrom, DateTo rows and
prints the pair of employees with the most days worked together on common
projects. Rows that cannot be parsed are listed and skipped.`,
		Example: `  workpairs analyze employees.csv
  workpairs analyze employees.xlsx --strategy sweep-line --all
  workpairs analyze employees.csv --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "",
		"Engine strategy: auto, brute-force, sweep-line or parallel (default from ENGINE_STRATEGY)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "Output format: table, json or yaml")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Workers for the parallel strategy (default from ENGINE_WORKERS)")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "List every pair, not only the longest")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log loader and engine progress to stderr")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions, path string) error {
	if !slices.Contains(outputFormats, opts.output) {
		return errors.Errorf("unknown output format %q (want one of %v)", opts.output, outputFormats)
	}

	cfg, err := config.Load(root.envFiles...)
	if err != nil {
		return err
	}

	strategy := cfg.Strategy()
	if opts.strategy != "" {
		if strategy, err = overlap.ParseStrategy(opts.strategy); err != nil {
			return err
		}
	}
	workers := cfg.Workers()
	if opts.workers > 0 {
		workers = opts.workers
	}

	logger := logging.NewNopLogger()
	if opts.verbose {
		logger = logging.New(logging.Options{
			Writer: cmd.ErrOrStderr(),
			Level:  logging.DebugLevel,
			Format: logging.FormatText,
		})
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer f.Close()

	skipped := &loader.CollectingReporter{}
	ld := loader.New(
		loader.WithClock(analyzeClock),
		loader.WithLogger(logger),
		loader.WithReporter(loader.MultiReporter(skipped, loader.NewLogReporter(logger))),
	)
	records, err := ld.Load(cmd.Context(), f, filepath.Base(path))
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}

	engine := overlap.NewEngine(
		overlap.WithStrategy(strategy),
		overlap.WithWorkers(workers),
		overlap.WithBruteForceThreshold(cfg.Engine.BruteForceThreshold),
		overlap.WithLogger(logger),
	)
	result, err := engine.Compute(cmd.Context(), records)
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), newReport(path, result, skipped.Rows(), opts.all), opts.output)
}
