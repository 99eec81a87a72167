// Package cli implements the newsdesk command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/newsdesk-io/newsdesk/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
	flagFeeds     string
)

var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "Automated news enrichment pipeline",
	Long: `Newsdesk ingests articles from RSS feeds, deduplicates them,
enriches them with web context and model-generated drafts, and routes
every draft through an editorial review before it is published.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.newsdesk)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.newsdesk/data)")
	rootCmd.PersistentFlags().StringVar(&flagFeeds, "feeds", "", "feeds file (default <config-dir>/feeds.yaml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
