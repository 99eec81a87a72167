package driving

import (
	"context"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// BatchRunner drives one pipeline execution over a batch of feed articles
// and collects every article's terminal outcome.
type BatchRunner interface {
	// RunBatch fetches a batch, runs the main pipeline, fans out the
	// editorial subgraphs and returns the batch report. Cancelling ctx
	// abandons in-flight external calls; partial state is never persisted.
	// A fatal pipeline error is returned together with the partial report.
	RunBatch(ctx context.Context) (*domain.BatchReport, error)
}
