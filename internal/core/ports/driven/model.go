package driven

import (
	"context"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// PlannerModel produces the enrichment plan for one canonical article.
// Failures wrap domain.ErrGeneration and are per-item.
type PlannerModel interface {
	Plan(ctx context.Context, article domain.CanonicalArticle) (domain.ArticlePlan, error)
}

// GenerationInput is everything the generation model may draw on.
type GenerationInput struct {
	// Article is the canonical source article.
	Article domain.CanonicalArticle

	// Plan is the enrichment plan for the article.
	Plan domain.ArticlePlan

	// SearchResults are the parsed external pages, ordered by query index.
	// May be empty; generation then uses only the original content.
	SearchResults []domain.SearchResult
}

// GenerationModel produces a structured article draft. It must be
// deterministic enough that re-issuing a retried call with identical input
// is acceptable. Failures wrap domain.ErrGeneration and are per-item.
type GenerationModel interface {
	Generate(ctx context.Context, input GenerationInput) (domain.EnrichedArticle, error)
}

// EditorialModel backs the editorial subgraph: reviewing drafts, producing
// corrected revisions, and validating that revisions resolved the flagged
// issues. Failures wrap domain.ErrReview.
type EditorialModel interface {
	// Review evaluates legal, ethical and editorial criteria against the
	// article and returns a structured outcome draft. The machine fills in
	// ArticleID, RevisionCount and the reconsideration flag.
	Review(ctx context.Context, article domain.EnrichedArticle, history []domain.ReviewOutcome) (domain.ReviewOutcome, error)

	// Revise produces a corrected draft addressing the given issues.
	// Content fields may be replaced; identity is preserved by the caller.
	Revise(ctx context.Context, article domain.EnrichedArticle, issues []domain.ReviewIssue) (domain.EnrichedArticle, error)

	// ValidateFixes checks the revised draft against the prior issue list.
	// Every issue must be resolved or explicitly re-justified to pass.
	ValidateFixes(ctx context.Context, article domain.EnrichedArticle, issues []domain.ReviewIssue) (domain.FixValidation, error)
}
