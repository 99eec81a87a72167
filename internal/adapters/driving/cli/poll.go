package cli

import (
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/config/file"
	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/logger"
)

var pollInterval time.Duration

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run batches continuously",
	Long: `Processes one batch after another, sleeping between batches.
Edits to the feeds file take effect on the next cycle without a restart.
Stop with Ctrl-C; the current batch finishes (or is cancelled on a
second interrupt).`,
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().DurationVar(&pollInterval, "interval", 0, "delay between batches (default from config)")
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	interval := pollInterval
	if interval <= 0 {
		interval = app.Config.PollInterval
	}

	watcher, err := file.NewFeedWatcher(app.FeedsPath, app.Feeds.SetFeeds)
	if err != nil {
		logger.Warn("feed watcher unavailable, edits need a restart: %v", err)
	} else {
		defer watcher.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("polling every %s, Ctrl-C to stop\n", interval)
	for {
		report, err := app.Runner.RunBatch(ctx)
		if report != nil && len(report.Items) > 0 {
			printReport(cmd, report)
		}
		switch {
		case errors.Is(err, domain.ErrBatchCancelled), ctx.Err() != nil:
			cmd.Println("stopping")
			return nil
		case err != nil:
			// A fatal batch error (feed outage, store failure) is logged
			// and retried on the next cycle.
			logger.Warn("batch failed: %v", err)
		}

		select {
		case <-ctx.Done():
			cmd.Println("stopping")
			return nil
		case <-time.After(interval):
		}
	}
}
