package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dd0wney/workpairs/pkg/api"
	"github.com/dd0wney/workpairs/pkg/config"
	"github.com/dd0wney/workpairs/pkg/logging"
	"github.com/dd0wney/workpairs/pkg/metrics"
	"github.com/dd0wney/workpairs/pkg/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP upload service",
		Long: `Serve the upload form on /upload and /home, the JSON endpoint POST /api/upload,
health probes under /health and Prometheus metrics on /metrics.

Settings come from the environment and the --env-file files. SIGHUP reloads
the log level; SIGINT or SIGTERM drain in-flight requests and exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root.envFiles)
		},
	}
}

func runServe(ctx context.Context, envFiles []string) error {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	apiServer := api.NewServer(cfg,
		api.WithLogger(logger),
		api.WithMetrics(metrics.DefaultRegistry()),
	)

	gs := server.NewGracefulServer(cfg.Server.Addr(), apiServer.Handler(),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		server.WithLogger(logger),
		server.OnShutdown(apiServer.Drain),
	)
	gs.SetConfigReloadFunc(reloadLogLevel(envFiles, logger))

	logger.Info("workpairs server starting",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.Strategy(string(cfg.Strategy())),
		logging.Int("workers", cfg.Workers()),
	)
	return gs.Run(ctx)
}

// reloadLogLevel re-reads the env files and applies the new log level.
// Other settings need a restart.
func reloadLogLevel(envFiles []string, logger logging.Logger) server.ConfigReloadFunc {
	return func() error {
		cfg, err := config.Reload(envFiles...)
		if err != nil {
			return err
		}
		level := logging.ParseLevel(cfg.Log.Level)
		logger.SetLevel(level)
		logger.Info("log level reloaded", logging.String("level", level.String()))
		return nil
	}
}
