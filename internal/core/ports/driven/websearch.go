package driven

import (
	"context"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// SearchProvider issues one web search query and parses the result pages.
// A failed or empty search degrades enrichment rather than failing the
// article: generation falls back to original content only.
type SearchProvider interface {
	// Search returns parsed result pages for the query, possibly empty.
	Search(ctx context.Context, query string) ([]domain.WebPage, error)
}
