package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one batch of feed articles",
	Long: `Fetches up to one batch of new articles from the configured feeds,
runs them through the enrichment pipeline and the editorial review, and
prints the fate of every article.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Runner.RunBatch(cmd.Context())
	if report != nil {
		printReport(cmd, report)
	}
	return err
}

// printReport writes the per-article fates and the summary line.
func printReport(cmd *cobra.Command, report *domain.BatchReport) {
	for _, item := range report.Items {
		switch item.Fate {
		case domain.FateDuplicate:
			cmd.Printf("  %-11s %s (duplicate of %s)\n", item.Fate, item.Title, item.DuplicateOf)
		case domain.FateFailed:
			cmd.Printf("  %-11s %s (at %s: %s)\n", item.Fate, item.Title, item.FailedStage, item.Error)
		default:
			note := ""
			if item.Degraded {
				note = " [degraded enrichment]"
			}
			if item.Revisions > 0 {
				note += fmt.Sprintf(" [revisions: %d]", item.Revisions)
			}
			cmd.Printf("  %-11s %s%s\n", item.Fate, item.Title, note)
		}
	}

	cmd.Printf("batch %s: %d published, %d interview, %d rejected, %d duplicates, %d failed (%s)\n",
		report.BatchID, report.Published, report.Interview, report.Rejected,
		report.Duplicates, report.Failures,
		report.FinishedAt.Sub(report.StartedAt).Round(10*time.Millisecond))
}
