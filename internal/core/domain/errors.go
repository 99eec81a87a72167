package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline contract errors. Both are programming errors: the pipeline
	// construction or a stage implementation is wrong, so a batch run halts
	// immediately rather than carrying on with corrupted state.

	// ErrOwnershipViolation indicates a stage wrote a field it does not own,
	// or wrote a single-write field twice.
	ErrOwnershipViolation = errors.New("field ownership violation")

	// ErrNotYetProduced indicates a field was read before its owning stage ran.
	ErrNotYetProduced = errors.New("field not yet produced")

	// Per-item collaborator failures. These mark one article as failed and
	// never abort the whole batch.

	// ErrExtraction indicates the content extractor could not fetch or parse a page.
	ErrExtraction = errors.New("extraction failed")

	// ErrSearch indicates the web search provider failed.
	// Search failures degrade enrichment rather than failing the article.
	ErrSearch = errors.New("web search failed")

	// ErrGeneration indicates the generation model failed to produce a draft.
	ErrGeneration = errors.New("generation failed")

	// ErrReview indicates the review model failed to produce a decision.
	ErrReview = errors.New("editorial review failed")

	// ErrCommitConflict indicates the persistence gateway detected a concurrent
	// commit for the same article identity. Resolved by treating the later
	// commit as a duplicate reference, not surfaced to callers as a failure.
	ErrCommitConflict = errors.New("commit conflict")

	// ErrBatchCancelled indicates the run controller cancelled the batch.
	// Partial state for a cancelled batch is never persisted.
	ErrBatchCancelled = errors.New("batch cancelled")

	// ErrFeedUnavailable indicates the feed source could not be polled.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or unreachable. Deduplication degrades to hash-only matching.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
