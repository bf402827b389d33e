// Package cmd provides CLI commands for splitsettle.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsettle/pkg/logging"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "splitsettle",
	Short: "Reconcile Splitwise settlements into ledger transactions",
	Long: `splitsettle turns a batch of Splitwise expenses into one balanced
split transaction in your budget ledger.

It supports:
- Reconciling expense shares into minor-unit split lines that sum exactly
  to the settlement total
- Deterministic draft IDs for idempotent transaction creation
- Duplicate detection with a local SQLite history
- AI-assisted categorization with a local category cache
- Dry-run mode for reviewing a draft without applying it

Example:
  splitsettle settle --dry-run
  splitsettle settle --since 2024-01-20 --yes
  splitsettle status`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logging.SetupWithLevel(slog.LevelDebug)
		} else {
			logging.Setup()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(settleCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(mappingsCmd)
}

// exitOnError logs the error and exits.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
