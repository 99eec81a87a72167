package driven

import (
	"context"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// FeedSource yields raw articles from configured feeds. Each poll cycle is
// finite; the source is restartable on the next cycle and should use
// conditional requests (ETag/Last-Modified) to skip unchanged feeds.
type FeedSource interface {
	// Fetch returns up to limit new raw articles across all feeds.
	// An unreachable individual feed is skipped, not fatal; Fetch fails
	// only when no feed could be polled at all.
	Fetch(ctx context.Context, limit int) ([]domain.RawArticle, error)
}
