// Package cmd implements the questlog command line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/questlog/questlog/pkg/logging"
)

var (
	verbose bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "questlog",
	Short: "Game library reconciliation CLI",
	Long: `Questlog keeps a personal game tracking database synchronized with
external catalogs: game metadata (platforms, genres, release dates,
covers, critic ratings) and completion-time estimates.

Each run matches every tracked game against the catalogs, merges the
results under a fixed authority order, and writes back only the fields
that changed. User-curated columns are never touched.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

// Execute runs the CLI with a signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Default().Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
