// Package stages implements the main-pipeline stages: extract, plan,
// search and generate. Each stage declares the state fields it reads and
// exclusively owns, processes the full batch of surviving articles with a
// bounded worker pool, and records per-item failures without aborting the
// batch.
package stages

import "github.com/newsdesk-io/newsdesk/internal/core/pipeline"

// Pipeline state fields. Raw and seed articles are seeded by the run
// controller; the rest are each owned by exactly one stage.
const (
	// FieldRawArticles holds map[string]domain.RawArticle keyed by
	// canonical ID. Seeded input.
	FieldRawArticles pipeline.Field = "raw_articles"

	// FieldSeedArticles holds map[string]domain.CanonicalArticle skeletons
	// minted by identity resolution (ID, hash, embedding). Seeded input.
	FieldSeedArticles pipeline.Field = "seed_articles"

	// FieldArticles holds map[string]domain.CanonicalArticle with
	// extracted content, language and type. Owned by extract.
	FieldArticles pipeline.Field = "articles"

	// FieldPlans holds map[string]domain.ArticlePlan. Owned by plan.
	FieldPlans pipeline.Field = "plans"

	// FieldSearchResults holds map[string][]domain.SearchResult. Owned by
	// search.
	FieldSearchResults pipeline.Field = "search_results"

	// FieldEnriched holds map[string]domain.EnrichedArticle. Owned by
	// generate.
	FieldEnriched pipeline.Field = "enriched"
)

// InputFields are the fields the run controller seeds before the first
// stage executes.
func InputFields() []pipeline.Field {
	return []pipeline.Field{FieldRawArticles, FieldSeedArticles}
}
