package stages

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/pipeline"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
)

// StagePlan is the plan stage name.
const StagePlan = "plan"

// Plan produces one enrichment plan per surviving article: headline
// candidate, summary, keywords, categories and the ordered search queries.
// Plans are written once and read-only afterwards.
type Plan struct {
	planner     driven.PlannerModel
	concurrency int
	timeout     time.Duration
}

// NewPlan creates the plan stage.
func NewPlan(planner driven.PlannerModel, concurrency int, timeout time.Duration) *Plan {
	return &Plan{planner: planner, concurrency: concurrency, timeout: timeout}
}

func (s *Plan) Name() string { return StagePlan }

func (s *Plan) Reads() []pipeline.Field {
	return []pipeline.Field{FieldArticles}
}

func (s *Plan) Writes() []pipeline.Field {
	return []pipeline.Field{FieldPlans}
}

func (s *Plan) Execute(ctx context.Context, state *pipeline.State) error {
	articles, err := pipeline.Value[map[string]domain.CanonicalArticle](state, FieldArticles)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	plans := make(map[string]domain.ArticlePlan, len(articles))

	_, ctxErr := pipeline.ForEach(ctx, state.Surviving(), s.concurrency, func(ctx context.Context, id string) error {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		plan, err := s.planner.Plan(callCtx, articles[id])
		cancel()

		if err != nil {
			state.MarkFailed(StagePlan, id, fmt.Errorf("%w: %w", domain.ErrGeneration, err))
			return nil
		}

		plan.ArticleID = id
		mu.Lock()
		plans[id] = plan
		mu.Unlock()
		return nil
	})
	if ctxErr != nil {
		return ctxErr
	}

	return state.Set(StagePlan, FieldPlans, plans)
}
