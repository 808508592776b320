package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/countries-proxy/pkg/config"
	"github.com/Sternrassler/countries-proxy/pkg/logging"
)

type rootOptions struct {
	configFile string
	logLevel   string
}

// newRootCmd builds the command tree. Running the root command without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "countries-proxy",
		Short:         "Caching proxy for the REST Countries API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, toml or json); environment variables take precedence")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newErrorsCmd(opts))

	return rootCmd
}

// load reads the configuration and applies flag overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// setupLogging configures the global logger from cfg.
func setupLogging(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	return logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: cmd.ErrOrStderr(),
	})
}
