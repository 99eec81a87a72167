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

// StageGenerate is the generate stage name.
const StageGenerate = "generate"

// Generate produces the enriched article draft from the canonical article,
// its plan and its search results. An article with no usable search pages
// is still generated from original content alone and marked degraded.
type Generate struct {
	generator   driven.GenerationModel
	concurrency int
	timeout     time.Duration
}

// NewGenerate creates the generate stage.
func NewGenerate(generator driven.GenerationModel, concurrency int, timeout time.Duration) *Generate {
	return &Generate{generator: generator, concurrency: concurrency, timeout: timeout}
}

func (s *Generate) Name() string { return StageGenerate }

func (s *Generate) Reads() []pipeline.Field {
	return []pipeline.Field{FieldArticles, FieldPlans, FieldSearchResults}
}

func (s *Generate) Writes() []pipeline.Field {
	return []pipeline.Field{FieldEnriched}
}

func (s *Generate) Execute(ctx context.Context, state *pipeline.State) error {
	articles, err := pipeline.Value[map[string]domain.CanonicalArticle](state, FieldArticles)
	if err != nil {
		return err
	}
	plans, err := pipeline.Value[map[string]domain.ArticlePlan](state, FieldPlans)
	if err != nil {
		return err
	}
	searches, err := pipeline.Value[map[string][]domain.SearchResult](state, FieldSearchResults)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	enriched := make(map[string]domain.EnrichedArticle, len(articles))

	_, ctxErr := pipeline.ForEach(ctx, state.Surviving(), s.concurrency, func(ctx context.Context, id string) error {
		input := driven.GenerationInput{
			Article:       articles[id],
			Plan:          plans[id],
			SearchResults: searches[id],
		}

		degraded := !hasPages(input.SearchResults)
		if degraded {
			logger.Info("no search context for %s, generating from original content", id)
		}

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		draft, err := s.generator.Generate(callCtx, input)
		cancel()

		if err != nil {
			state.MarkFailed(StageGenerate, id, fmt.Errorf("%w: %w", domain.ErrGeneration, err))
			return nil
		}

		draft.ArticleID = id
		draft.Language = input.Article.Language
		draft.RevisionCount = 0
		draft.Status = domain.EnrichmentSuccess
		if degraded {
			draft.Status = domain.EnrichmentDegraded
			state.MarkDegraded(id)
		}
		draft.GeneratedAt = time.Now()

		mu.Lock()
		enriched[id] = draft
		mu.Unlock()
		return nil
	})
	if ctxErr != nil {
		return ctxErr
	}

	return state.Set(StageGenerate, FieldEnriched, enriched)
}

func hasPages(results []domain.SearchResult) bool {
	for _, r := range results {
		if len(r.Pages) > 0 {
			return true
		}
	}
	return false
}
