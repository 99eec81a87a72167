package domain

// ArticleBundle is the unit the persistence gateway commits atomically:
// either the whole bundle lands, or nothing does. Only terminal editorial
// outcomes produce bundles; mid-run pipeline state is never persisted.
type ArticleBundle struct {
	// Canonical is the deduplicated source article.
	Canonical CanonicalArticle

	// Plan is the enrichment plan, kept for audit.
	Plan ArticlePlan

	// Enriched is the final article draft, including editorial flags.
	Enriched EnrichedArticle

	// History is the full ordered review history for the lifecycle.
	History []ReviewOutcome

	// Terminal is the decision that ended the lifecycle.
	Terminal Decision
}
