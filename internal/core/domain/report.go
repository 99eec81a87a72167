package domain

import "time"

// Fate is the final status of one input article in a batch.
type Fate string

const (
	FatePublished   Fate = "published"
	FateInterview   Fate = "interview"
	FateRejected    Fate = "rejected"
	FateDuplicate   Fate = "duplicate"
	FateFailed      Fate = "failed"
	FateUnprocessed Fate = "unprocessed"
)

// ItemFate records what happened to one input article. Every input article
// gets exactly one entry in the batch report; nothing is silently dropped.
type ItemFate struct {
	// ArticleID is the canonical identity, empty for items that never
	// resolved one (feed-level failures).
	ArticleID string

	// Link is the source URL, kept so failed items remain identifiable.
	Link string

	// Title is the original title.
	Title string

	// Fate is the final status.
	Fate Fate

	// FailedStage names the main-pipeline stage the item failed at, when
	// Fate is failed.
	FailedStage string

	// DuplicateOf is the existing canonical ID, when Fate is duplicate.
	DuplicateOf string

	// Revisions is how many editorial revisions the article went through.
	Revisions int

	// Degraded marks enrichment that ran without search context.
	Degraded bool

	// Error is the recorded failure message, when Fate is failed.
	Error string
}

// BatchReport summarises one run controller batch. It always enumerates
// every input article's fate.
type BatchReport struct {
	// BatchID identifies the run.
	BatchID string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Items holds one fate per input article, in input order.
	Items []ItemFate

	// Published, Interview, Rejected, Duplicates and Failures are counts
	// derived from Items, kept for log and CLI summaries.
	Published  int
	Interview  int
	Rejected   int
	Duplicates int
	Failures   int

	// Degraded counts articles enriched without search context.
	Degraded int
}

// Tally recomputes the summary counts from Items.
func (r *BatchReport) Tally() {
	r.Published, r.Interview, r.Rejected, r.Duplicates, r.Failures, r.Degraded = 0, 0, 0, 0, 0, 0
	for _, it := range r.Items {
		switch it.Fate {
		case FatePublished:
			r.Published++
		case FateInterview:
			r.Interview++
		case FateRejected:
			r.Rejected++
		case FateDuplicate:
			r.Duplicates++
		case FateFailed:
			r.Failures++
		}
		if it.Degraded {
			r.Degraded++
		}
	}
}
