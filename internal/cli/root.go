package cli

import (
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the root command for the fern CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fern",
		Short: "Fern - action catalog API",
		Long:  "Serves the action catalog as nested JSON documents assembled from the catalog tables.",
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "optional dotenv file loaded before the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// load reads the configuration and builds the logger every command runs with.
func (o *RootOptions) load() (config.Config, ectologger.Logger, *zap.Logger, error) {
	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	logger, zl, err := logging.New(logging.Config{
		AppName: cfg.AppName,
		Level:   cfg.LogLevel,
		Pretty:  cfg.PrettyLogs,
	})
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, zl, nil
}
