package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantlab/quantsim/config"
)

var rootCmd = &cobra.Command{
	Use:   "quantsim",
	Short: "An event-driven backtesting simulator for a single asset",
	Long: `Quantsim replays historical OHLCV bars against a list of trading signals
and produces a trade ledger, an equity curve and performance statistics.

It provides tools for:
  - Running deterministic backtests from bar datasets and signal files
  - Generating signals from rule-based strategies with built-in indicators
  - Journaling runs to CSV files or a SQLite database
  - Querying past runs and exporting Org-mode reports`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger from the config's logging section.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}
