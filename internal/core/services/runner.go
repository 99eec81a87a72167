package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/editorial"
	"github.com/newsdesk-io/newsdesk/internal/core/pipeline"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driving"
	"github.com/newsdesk-io/newsdesk/internal/logger"
	"github.com/newsdesk-io/newsdesk/internal/stages"
)

// StageIdentity names the pre-pipeline identity resolution step in item
// audit trails.
const StageIdentity = "identity"

// Ensure RunController implements the interface.
var _ driving.BatchRunner = (*RunController)(nil)

// RunController drives one batch: fetch, deduplicate, run the main
// pipeline once over all surviving articles, then fan the enriched output
// into independent editorial subgraph runs and collect terminal outcomes.
type RunController struct {
	feed     driven.FeedSource
	resolver *IdentityResolver
	pipe     *pipeline.Pipeline
	machine  *editorial.Machine
	cfg      domain.Config
}

// NewRunController creates a run controller.
func NewRunController(
	feed driven.FeedSource,
	resolver *IdentityResolver,
	pipe *pipeline.Pipeline,
	machine *editorial.Machine,
	cfg domain.Config,
) *RunController {
	cfg.Normalise()
	return &RunController{
		feed:     feed,
		resolver: resolver,
		pipe:     pipe,
		machine:  machine,
		cfg:      cfg,
	}
}

// RunBatch executes one full batch. The returned report enumerates every
// input article's final fate; nothing is silently dropped. A fatal
// pipeline error is returned together with the partial report.
func (c *RunController) RunBatch(ctx context.Context) (*domain.BatchReport, error) {
	report := &domain.BatchReport{
		BatchID:   uuid.NewString(),
		StartedAt: time.Now(),
	}
	defer func() {
		report.FinishedAt = time.Now()
		report.Tally()
	}()

	raws, err := c.feed.Fetch(ctx, c.cfg.BatchSize)
	if err != nil {
		return report, fmt.Errorf("%w: %w", domain.ErrFeedUnavailable, err)
	}
	if len(raws) == 0 {
		logger.Info("no new articles this cycle")
		return report, nil
	}

	logger.Section("identity")
	state := c.pipe.NewState()
	rawsByID := make(map[string]domain.RawArticle, len(raws))
	seeds := make(map[string]domain.CanonicalArticle, len(raws))
	fates := make([]domain.ItemFate, len(raws))
	idByIndex := make([]string, len(raws))

	for i, raw := range raws {
		fates[i] = domain.ItemFate{Link: raw.Link, Title: raw.Title}

		res, err := c.resolver.Resolve(ctx, raw)
		if err != nil {
			fates[i].Fate = domain.FateFailed
			fates[i].FailedStage = StageIdentity
			fates[i].Error = err.Error()
			continue
		}
		if res.Duplicate {
			fates[i].Fate = domain.FateDuplicate
			fates[i].DuplicateOf = res.DuplicateOf
			continue
		}

		id := res.Article.ID
		fates[i].ArticleID = id
		fates[i].Fate = domain.FateUnprocessed
		idByIndex[i] = id
		rawsByID[id] = raw
		seeds[id] = res.Article
		state.AddItem(id)
	}

	if len(rawsByID) == 0 {
		report.Items = fates
		return report, nil
	}

	if err := state.Seed(stages.FieldRawArticles, rawsByID); err != nil {
		report.Items = fates
		return report, err
	}
	if err := state.Seed(stages.FieldSeedArticles, seeds); err != nil {
		report.Items = fates
		return report, err
	}

	pipeErr := c.pipe.Run(ctx, state)
	c.applyItemStates(state, fates, idByIndex)
	if pipeErr != nil {
		report.Items = fates
		if errors.Is(pipeErr, context.Canceled) {
			return report, fmt.Errorf("%w: %w", domain.ErrBatchCancelled, pipeErr)
		}
		return report, pipeErr
	}

	enriched, err := pipeline.Value[map[string]domain.EnrichedArticle](state, stages.FieldEnriched)
	if err != nil {
		report.Items = fates
		return report, err
	}

	results := c.runEditorial(ctx, state, enriched)

	for i, id := range idByIndex {
		if id == "" || fates[i].Fate != domain.FateUnprocessed {
			continue
		}
		out, ok := results[id]
		if !ok {
			continue
		}
		if out.err != nil {
			fates[i].Fate = domain.FateFailed
			fates[i].FailedStage = "editorial"
			fates[i].Error = out.err.Error()
			continue
		}
		fates[i].Revisions = out.result.Article.RevisionCount
		switch out.result.Terminal {
		case domain.DecisionPublish:
			fates[i].Fate = domain.FatePublished
		case domain.DecisionInterview:
			fates[i].Fate = domain.FateInterview
		case domain.DecisionReject:
			fates[i].Fate = domain.FateRejected
		}
	}

	report.Items = fates
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("%w: %w", domain.ErrBatchCancelled, err)
	}
	return report, nil
}

// applyItemStates copies per-item pipeline failures and degradation notes
// into the fate list.
func (c *RunController) applyItemStates(state *pipeline.State, fates []domain.ItemFate, idByIndex []string) {
	for i, id := range idByIndex {
		if id == "" {
			continue
		}
		it := state.Item(id)
		if it == nil {
			continue
		}
		fates[i].Degraded = it.Degraded
		if it.State == pipeline.ItemFailed {
			fates[i].Fate = domain.FateFailed
			fates[i].FailedStage = it.FailedStage
			if it.Err != nil {
				fates[i].Error = it.Err.Error()
			}
		}
	}
}

type editorialOutcome struct {
	result *editorial.Result
	err    error
}

// runEditorial fans the enriched articles into independent subgraph runs.
// Runs share no mutable state, so they execute concurrently up to the
// stage concurrency limit; the controller joins on all of them.
func (c *RunController) runEditorial(
	ctx context.Context,
	state *pipeline.State,
	enriched map[string]domain.EnrichedArticle,
) map[string]editorialOutcome {
	logger.Section("editorial")

	articles, _ := pipeline.Value[map[string]domain.CanonicalArticle](state, stages.FieldArticles)
	plans, _ := pipeline.Value[map[string]domain.ArticlePlan](state, stages.FieldPlans)

	var mu sync.Mutex
	results := make(map[string]editorialOutcome, len(enriched))

	ids := state.Surviving()
	_, _ = pipeline.ForEach(ctx, ids, c.cfg.StageConcurrency, func(ctx context.Context, id string) error {
		draft, ok := enriched[id]
		if !ok {
			return nil
		}

		bundle := domain.ArticleBundle{
			Canonical: articles[id],
			Plan:      plans[id],
			Enriched:  draft,
		}

		res, err := c.machine.Run(ctx, bundle)
		mu.Lock()
		results[id] = editorialOutcome{result: res, err: err}
		mu.Unlock()
		return nil
	})

	return results
}
