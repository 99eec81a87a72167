package editorial

import (
	"context"
	"fmt"
	"time"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
	"github.com/newsdesk-io/newsdesk/internal/logger"
)

// ValidatorReviewer identifies outcomes produced by the fix validator
// rather than a full review pass.
const ValidatorReviewer = "fix-validator"

// Result is the terminal outcome of one editorial run.
type Result struct {
	// Terminal is the decision that ended the run: publish, interview or
	// reject.
	Terminal domain.Decision

	// Article is the final draft, including editorial flags and any
	// revisions applied along the way.
	Article domain.EnrichedArticle

	// History is the full ordered review history, one outcome per review
	// attempt. Never empty.
	History []domain.ReviewOutcome

	// Transitions counts state transitions taken, for the termination
	// bound check.
	Transitions int

	// StoredID is the article ID the persistence gateway returned on
	// commit.
	StoredID string
}

// Machine drives the editorial subgraph for a single article. It is safe
// to run many machines concurrently: each run mutates only its own article
// and appends only to its own history.
type Machine struct {
	model        driven.EditorialModel
	store        driven.ArticleStore
	dispatcher   driven.InterviewDispatcher
	maxRevisions int
	callTimeout  time.Duration
}

// NewMachine creates an editorial machine. maxRevisions bounds the revise
// loop; zero or negative values fall back to the configured default.
func NewMachine(
	model driven.EditorialModel,
	store driven.ArticleStore,
	dispatcher driven.InterviewDispatcher,
	maxRevisions int,
	callTimeout time.Duration,
) *Machine {
	if maxRevisions <= 0 {
		maxRevisions = domain.DefaultMaxRevisions
	}
	if callTimeout <= 0 {
		callTimeout = domain.DefaultCallTimeout
	}
	return &Machine{
		model:        model,
		store:        store,
		dispatcher:   dispatcher,
		maxRevisions: maxRevisions,
		callTimeout:  callTimeout,
	}
}

// Run reviews the article and follows the transition graph until a
// terminal state. Revision counts increase strictly and never exceed the
// configured maximum, so the loop always terminates. Content fields are
// replaced only by the revise transition; every other transition leaves
// them untouched.
func (m *Machine) Run(ctx context.Context, bundle domain.ArticleBundle) (*Result, error) {
	article := bundle.Enriched
	res := &Result{}

	outcome, err := m.review(ctx, article, nil, false)
	if err != nil {
		return nil, err
	}
	res.Transitions++
	outcome = m.capRevise(outcome, article)
	res.History = append(res.History, outcome)

	for outcome.Decision == domain.DecisionRevise {
		// REVISE: produce a corrected draft. Identity is preserved and the
		// revision counter increments.
		draft, err := m.revise(ctx, article, outcome.Issues)
		if err != nil {
			return nil, err
		}
		res.Transitions++
		article = draft

		// VALIDATE: every flagged issue must be resolved or re-justified.
		val, err := m.validate(ctx, article, outcome.Issues)
		if err != nil {
			return nil, err
		}
		res.Transitions++

		switch {
		case val.Passed:
			// Reconsideration pass through full review. A repeat revise
			// verdict does not reset the counter.
			outcome, err = m.review(ctx, article, res.History, true)
			if err != nil {
				return nil, err
			}
			res.Transitions++
			outcome = m.capRevise(outcome, article)

		case article.RevisionCount >= m.maxRevisions:
			outcome = m.exhaustedOutcome(article, val)
			res.Transitions++

		default:
			outcome = m.validatorOutcome(article, val)
			res.Transitions++
		}
		res.History = append(res.History, outcome)
	}

	res.Terminal = outcome.Decision
	res.Article = article

	switch outcome.Decision {
	case domain.DecisionPublish:
		// Featured is decided only here, from the separate headline
		// newsworthiness assessment.
		res.Article.Featured = outcome.Headline.Featured
		logger.Info("publishing article %s (featured=%t)", article.ArticleID, res.Article.Featured)

	case domain.DecisionInterview:
		res.Article.InterviewNeeded = true
		if err := m.dispatchInterview(ctx, article.ArticleID, outcome.Interview); err != nil {
			logger.Warn("interview dispatch for %s failed: %v", article.ArticleID, err)
		}

	case domain.DecisionReject:
		logger.Info("rejecting article %s (%s)", article.ArticleID, outcome.RejectReason)
	}

	bundle.Enriched = res.Article
	bundle.History = res.History
	bundle.Terminal = outcome.Decision

	id, err := m.store.Commit(ctx, bundle)
	if err != nil {
		return nil, fmt.Errorf("commit article %s: %w", article.ArticleID, err)
	}
	res.StoredID = id

	return res, nil
}

// review runs one full review pass and normalises the outcome so ArticleID,
// RevisionCount and the reconsideration flag always reflect the machine's
// view rather than the model's.
func (m *Machine) review(
	ctx context.Context,
	article domain.EnrichedArticle,
	history []domain.ReviewOutcome,
	reconsideration bool,
) (domain.ReviewOutcome, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()

	outcome, err := m.model.Review(callCtx, article, history)
	if err != nil {
		return domain.ReviewOutcome{}, fmt.Errorf("review article %s: %w: %w", article.ArticleID, domain.ErrReview, err)
	}

	outcome.ArticleID = article.ArticleID
	outcome.RevisionCount = article.RevisionCount
	outcome.Reconsideration = reconsideration
	if outcome.ReviewedAt.IsZero() {
		outcome.ReviewedAt = time.Now()
	}
	return outcome, nil
}

// revise produces a corrected draft while preserving identity and
// incrementing the revision counter.
func (m *Machine) revise(
	ctx context.Context,
	article domain.EnrichedArticle,
	issues []domain.ReviewIssue,
) (domain.EnrichedArticle, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()

	draft, err := m.model.Revise(callCtx, article, issues)
	if err != nil {
		return domain.EnrichedArticle{}, fmt.Errorf("revise article %s: %w: %w", article.ArticleID, domain.ErrReview, err)
	}

	draft.ArticleID = article.ArticleID
	draft.RevisionCount = article.RevisionCount + 1
	draft.Featured = article.Featured
	draft.InterviewNeeded = article.InterviewNeeded
	draft.Status = article.Status
	draft.GeneratedAt = time.Now()
	return draft, nil
}

func (m *Machine) validate(
	ctx context.Context,
	article domain.EnrichedArticle,
	issues []domain.ReviewIssue,
) (domain.FixValidation, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()

	val, err := m.model.ValidateFixes(callCtx, article, issues)
	if err != nil {
		return domain.FixValidation{}, fmt.Errorf("validate fixes for %s: %w: %w", article.ArticleID, domain.ErrReview, err)
	}
	return val, nil
}

// capRevise converts a revise verdict into a terminal reject when the
// revision budget is already spent, keeping revision counts strictly
// increasing across the history.
func (m *Machine) capRevise(outcome domain.ReviewOutcome, article domain.EnrichedArticle) domain.ReviewOutcome {
	if outcome.Decision == domain.DecisionRevise && article.RevisionCount >= m.maxRevisions {
		outcome.Decision = domain.DecisionReject
		outcome.RejectReason = domain.RejectReasonRevisionExhausted
	}
	return outcome
}

// exhaustedOutcome builds the terminal reject recorded when validation
// still fails at the revision bound.
func (m *Machine) exhaustedOutcome(article domain.EnrichedArticle, val domain.FixValidation) domain.ReviewOutcome {
	return domain.ReviewOutcome{
		ArticleID:     article.ArticleID,
		RevisionCount: article.RevisionCount,
		Decision:      domain.DecisionReject,
		RejectReason:  domain.RejectReasonRevisionExhausted,
		Reviewer:      ValidatorReviewer,
		Issues:        val.Remaining,
		Explanation: fmt.Sprintf("validation failed after %d revisions: %s",
			article.RevisionCount, val.Explanation),
		ReviewedAt: time.Now(),
	}
}

// validatorOutcome records a failed validation that still has revision
// budget left, routing the article back to revise.
func (m *Machine) validatorOutcome(article domain.EnrichedArticle, val domain.FixValidation) domain.ReviewOutcome {
	return domain.ReviewOutcome{
		ArticleID:     article.ArticleID,
		RevisionCount: article.RevisionCount,
		Decision:      domain.DecisionRevise,
		Reviewer:      ValidatorReviewer,
		Issues:        val.Remaining,
		Explanation: fmt.Sprintf("%d issue(s) remain after revision %d: %s",
			len(val.Remaining), article.RevisionCount, val.Explanation),
		ReviewedAt: time.Now(),
	}
}

func (m *Machine) dispatchInterview(ctx context.Context, articleID string, decision domain.InterviewDecision) error {
	if m.dispatcher == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()
	decision.Needed = true
	return m.dispatcher.Dispatch(callCtx, articleID, decision)
}
