package driven

import (
	"context"
	"time"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// DedupCandidate is one recent canonical article considered during the
// semantic duplicate check.
type DedupCandidate struct {
	// ArticleID is the canonical identity.
	ArticleID string

	// Embedding is the stored semantic fingerprint.
	Embedding []float32
}

// ArticleStore is the persistence gateway: the identity/dedup index plus
// the only component allowed to write terminal results. It is the single
// cross-run shared mutable resource; per-article commits are transactional.
type ArticleStore interface {
	// FindByHash returns the canonical ID for an exact content hash match,
	// or domain.ErrNotFound.
	FindByHash(ctx context.Context, hash string) (string, error)

	// RecentCandidates returns canonical articles ingested since the given
	// time that carry an embedding, for the near-duplicate check.
	RecentCandidates(ctx context.Context, since time.Time) ([]DedupCandidate, error)

	// SaveCanonical records a newly minted canonical identity in the dedup
	// index. Returns domain.ErrAlreadyExists if the hash landed
	// concurrently; callers treat that as a duplicate.
	SaveCanonical(ctx context.Context, article domain.CanonicalArticle) error

	// MarkDuplicate records that a raw article resolved to an existing
	// canonical identity.
	MarkDuplicate(ctx context.Context, link, duplicateOf string) error

	// Commit atomically persists a terminal article bundle and returns the
	// stored article ID. A concurrent commit for the same identity yields
	// the existing ID: the later commit becomes a duplicate reference,
	// never an error surfaced to the caller.
	Commit(ctx context.Context, bundle domain.ArticleBundle) (string, error)

	// Close releases resources.
	Close() error
}
