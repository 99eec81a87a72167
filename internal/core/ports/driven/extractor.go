package driven

import (
	"context"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// ExtractedContent is the structured result of extracting one page.
type ExtractedContent struct {
	// Body is the extracted article text.
	Body string

	// Language is the detected language (ISO 639-1), empty when unknown.
	Language string

	// Type is the classified article type.
	Type domain.ArticleType
}

// ContentExtractor turns a source URL into structured article content.
// Failures wrap domain.ErrExtraction and are per-item: the offending
// article is excluded from later stages, the batch proceeds.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (ExtractedContent, error)
}
