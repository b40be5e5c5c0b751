package main

import (
	"github.com/spf13/cobra"

	"github.com/unimate/listing-search/config"
	"github.com/unimate/listing-search/internal/logger"
)

// Version information
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "unimate",
		Short:         "UniMate boarding listing search",
		Long:          "unimate serves the listing search API and runs one-off searches and seeding against the configured store.",
		Version:       Version + " (commit: " + GitCommit + ", built: " + BuildTime + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Run before any subcommand
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
			opts.cfg = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newSeedCmd(opts))
	return rootCmd
}
