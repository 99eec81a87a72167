package stages

import (
	"context"
	"sync"
	"time"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/pipeline"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
	"github.com/newsdesk-io/newsdesk/internal/logger"
)

// StageSearch is the search stage name.
const StageSearch = "search"

// Search issues planned web searches and groups the parsed pages per
// article. Under the first-query-only policy only the first planned query
// is issued; the rest are recorded with empty results to keep the plan
// auditable. Search failure never fails an article: generation degrades
// to original-content-only enrichment instead.
type Search struct {
	provider       driven.SearchProvider
	firstQueryOnly bool
	concurrency    int
	timeout        time.Duration
}

// NewSearch creates the search stage.
func NewSearch(provider driven.SearchProvider, firstQueryOnly bool, concurrency int, timeout time.Duration) *Search {
	return &Search{
		provider:       provider,
		firstQueryOnly: firstQueryOnly,
		concurrency:    concurrency,
		timeout:        timeout,
	}
}

func (s *Search) Name() string { return StageSearch }

func (s *Search) Reads() []pipeline.Field {
	return []pipeline.Field{FieldPlans}
}

func (s *Search) Writes() []pipeline.Field {
	return []pipeline.Field{FieldSearchResults}
}

func (s *Search) Execute(ctx context.Context, state *pipeline.State) error {
	plans, err := pipeline.Value[map[string]domain.ArticlePlan](state, FieldPlans)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	results := make(map[string][]domain.SearchResult, len(plans))

	_, ctxErr := pipeline.ForEach(ctx, state.Surviving(), s.concurrency, func(ctx context.Context, id string) error {
		plan, ok := plans[id]
		if !ok {
			return nil
		}

		group := make([]domain.SearchResult, 0, len(plan.SearchQueries))
		for i, query := range plan.SearchQueries {
			result := domain.SearchResult{ArticleID: id, QueryIndex: i, Query: query}

			if i == 0 || !s.firstQueryOnly {
				callCtx, cancel := context.WithTimeout(ctx, s.timeout)
				pages, err := s.provider.Search(callCtx, query)
				cancel()

				if err != nil {
					logger.Warn("search %q for %s failed: %v", query, id, err)
				} else {
					result.Pages = pages
				}
			}
			group = append(group, result)
		}

		mu.Lock()
		results[id] = group
		mu.Unlock()
		return nil
	})
	if ctxErr != nil {
		return ctxErr
	}

	return state.Set(StageSearch, FieldSearchResults, results)
}
