// Package cmd defines the CLI commands for the collector executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "music-metrics-crawler",
		Short: "Collects daily streaming metrics from Korean music platforms",
		Long: `music-metrics-crawler scrapes cumulative play and listener counts for a
configured list of songs from public Genie, Bugs, and Melon pages, resolves
missing song identifiers via each platform's search, and upserts one metric
snapshot per track per day.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newCollectCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
