package stages

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/pipeline"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
	"github.com/newsdesk-io/newsdesk/internal/logger"
)

// StageExtract is the extract stage name.
const StageExtract = "extract"

// Extract turns raw feed items into canonical articles with full content,
// detected language and classified type. An unreachable or unparseable
// page is a per-item failure unless the feed itself carried usable body
// text to fall back on.
type Extract struct {
	extractor   driven.ContentExtractor
	concurrency int
	timeout     time.Duration
}

// NewExtract creates the extract stage.
func NewExtract(extractor driven.ContentExtractor, concurrency int, timeout time.Duration) *Extract {
	return &Extract{extractor: extractor, concurrency: concurrency, timeout: timeout}
}

func (s *Extract) Name() string { return StageExtract }

func (s *Extract) Reads() []pipeline.Field {
	return []pipeline.Field{FieldRawArticles, FieldSeedArticles}
}

func (s *Extract) Writes() []pipeline.Field {
	return []pipeline.Field{FieldArticles}
}

// Execute extracts content for every surviving article.
func (s *Extract) Execute(ctx context.Context, state *pipeline.State) error {
	raws, err := pipeline.Value[map[string]domain.RawArticle](state, FieldRawArticles)
	if err != nil {
		return err
	}
	seeds, err := pipeline.Value[map[string]domain.CanonicalArticle](state, FieldSeedArticles)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	articles := make(map[string]domain.CanonicalArticle, len(seeds))

	_, ctxErr := pipeline.ForEach(ctx, state.Surviving(), s.concurrency, func(ctx context.Context, id string) error {
		raw, seed := raws[id], seeds[id]

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		content, err := s.extractor.Extract(callCtx, raw.Link)
		cancel()

		if err != nil {
			if raw.Body == "" && raw.Summary == "" {
				state.MarkFailed(StageExtract, id, fmt.Errorf("%w: %w", domain.ErrExtraction, err))
				return nil
			}
			// Fall back to the feed-provided text.
			logger.Warn("extraction for %s failed, using feed body: %v", raw.Link, err)
			content = driven.ExtractedContent{Body: raw.Body, Type: raw.FeedCategory}
			if content.Body == "" {
				content.Body = raw.Summary
			}
		}

		article := seed
		article.Content = content.Body
		article.Language = content.Language
		article.Type = content.Type
		if article.Type == "" {
			article.Type = raw.FeedCategory
		}
		if article.Type == "" {
			article.Type = domain.TypeOther
		}

		mu.Lock()
		articles[id] = article
		mu.Unlock()
		return nil
	})
	if ctxErr != nil {
		return ctxErr
	}

	return state.Set(StageExtract, FieldArticles, articles)
}
