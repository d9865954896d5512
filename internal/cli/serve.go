package cli

import (
	"os/signal"
	"syscall"

	"github.com/Ramsey-B/fern/internal/app"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Connects to the catalog store (and redis when REDIS_HOST is set), retrying
with backoff, then serves until SIGINT or SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, zl, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer func() { _ = zl.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.WithContext(ctx).WithFields(map[string]any{
				"version": app.Version,
				"driver":  cfg.DatabaseDriver,
				"address": cfg.Address(),
			}).Info("Starting fern")

			return app.New(cfg, logger).Serve(ctx)
		},
	}
}
