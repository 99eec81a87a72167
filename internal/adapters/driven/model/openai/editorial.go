package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
)

// Ensure Model implements the interface.
var _ driven.EditorialModel = (*Model)(nil)

const reviewSystemPrompt = `You are the chief editor reviewing a generated news article before
publication. Evaluate it step by step against these criteria: legal
(defamation, privacy, copyright), accuracy (claims supported by the
content), ethics (fairness, sensitive topics) and style (clarity, tone).
Then decide one of:
  "publish": ready as is
  "interview": factually fine but needs an expert or stakeholder voice
  "revise": has fixable issues
  "reject": fundamentally unpublishable
Produce a JSON object with exactly these keys:
  "decision": one of publish|interview|revise|reject
  "reject_reason": short reason, only when rejecting
  "checked_criteria": list of criteria you evaluated
  "failed_criteria": subset that did not pass
  "steps": list of {"step_id", "action", "observation", "result"} where result is PASS, FAIL or INFO
  "explanation": how the evaluation led to the decision
  "issues": list of {"type", "location", "description", "suggestion"} where type is legal|accuracy|ethics|style|other; required when revising
  "warning": {"category", "details", "topics"} or null, a reader-facing warning for sensitive topics
  "headline": {"featured": bool, "reasoning"} assessing front-page newsworthiness
  "interview": {"needed": bool, "method": "phone"|"email", "expertise_areas", "focus", "justification"}; required when decision is interview
Respond with JSON only.`

const reviseSystemPrompt = `You are a journalist correcting an article after editorial review.
Address every listed issue. Keep everything else unchanged; do not add
new facts. Produce a JSON object with exactly these keys:
  "title", "lead", "summary", "body"
holding the corrected article. Respond with JSON only.`

const validateSystemPrompt = `You are an editorial validator. You receive a revised article and the
issues the reviewer flagged before the revision. Check each issue: is it
resolved in the revised text? The validation passes only when every
issue is resolved or explicitly justified as a non-issue.
Produce a JSON object with exactly these keys:
  "passed": bool
  "remaining": list of {"type", "location", "description", "suggestion"} for unresolved issues
  "explanation": a short summary of the validation
Respond with JSON only.`

// reviewResponse is the reviewer's JSON output format.
type reviewResponse struct {
	Decision        string      `json:"decision"`
	RejectReason    string      `json:"reject_reason"`
	CheckedCriteria []string    `json:"checked_criteria"`
	FailedCriteria  []string    `json:"failed_criteria"`
	Steps           []stepJSON  `json:"steps"`
	Explanation     string      `json:"explanation"`
	Issues          []issueJSON `json:"issues"`
	Warning         *struct {
		Category string   `json:"category"`
		Details  string   `json:"details"`
		Topics   []string `json:"topics"`
	} `json:"warning"`
	Headline struct {
		Featured  bool   `json:"featured"`
		Reasoning string `json:"reasoning"`
	} `json:"headline"`
	Interview struct {
		Needed         bool     `json:"needed"`
		Method         string   `json:"method"`
		ExpertiseAreas []string `json:"expertise_areas"`
		Focus          string   `json:"focus"`
		Justification  string   `json:"justification"`
	} `json:"interview"`
}

type stepJSON struct {
	StepID      int    `json:"step_id"`
	Action      string `json:"action"`
	Observation string `json:"observation"`
	Result      string `json:"result"`
}

type issueJSON struct {
	Type        string `json:"type"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// reviseResponse is the reviser's JSON output format.
type reviseResponse struct {
	Title   string `json:"title"`
	Lead    string `json:"lead"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// validateResponse is the validator's JSON output format.
type validateResponse struct {
	Passed      bool        `json:"passed"`
	Remaining   []issueJSON `json:"remaining"`
	Explanation string      `json:"explanation"`
}

// Review evaluates the article and returns a structured outcome draft.
func (m *Model) Review(ctx context.Context, article domain.EnrichedArticle, history []domain.ReviewOutcome) (domain.ReviewOutcome, error) {
	var user strings.Builder
	writeArticle(&user, article)

	if len(history) > 0 {
		user.WriteString("\n## Review history\n")
		for _, past := range history {
			fmt.Fprintf(&user, "- revision %d: %s", past.RevisionCount, past.Decision)
			if past.Explanation != "" {
				fmt.Fprintf(&user, " (%s)", past.Explanation)
			}
			user.WriteString("\n")
		}
	}

	var resp reviewResponse
	if err := m.completeJSON(ctx, reviewSystemPrompt, user.String(), 0.2, &resp); err != nil {
		return domain.ReviewOutcome{}, fmt.Errorf("review: %w", err)
	}

	decision := domain.Decision(strings.ToLower(resp.Decision))
	switch decision {
	case domain.DecisionPublish, domain.DecisionInterview, domain.DecisionRevise, domain.DecisionReject:
	default:
		return domain.ReviewOutcome{}, fmt.Errorf("review: unrecognised decision %q", resp.Decision)
	}
	if decision == domain.DecisionRevise && len(resp.Issues) == 0 {
		return domain.ReviewOutcome{}, fmt.Errorf("review: revise decision without issues")
	}

	outcome := domain.ReviewOutcome{
		Decision:        decision,
		RejectReason:    resp.RejectReason,
		Reviewer:        m.model,
		CheckedCriteria: resp.CheckedCriteria,
		FailedCriteria:  resp.FailedCriteria,
		Explanation:     resp.Explanation,
		Issues:          toIssues(resp.Issues),
		Headline: domain.HeadlineAssessment{
			Featured:  resp.Headline.Featured,
			Reasoning: resp.Headline.Reasoning,
		},
		Interview: domain.InterviewDecision{
			Needed:         resp.Interview.Needed || decision == domain.DecisionInterview,
			Method:         domain.InterviewMethod(resp.Interview.Method),
			ExpertiseAreas: resp.Interview.ExpertiseAreas,
			Focus:          resp.Interview.Focus,
			Justification:  resp.Interview.Justification,
		},
		ReviewedAt: time.Now(),
	}
	for _, step := range resp.Steps {
		outcome.Steps = append(outcome.Steps, domain.ReasoningStep{
			StepID:      step.StepID,
			Action:      step.Action,
			Observation: step.Observation,
			Result:      domain.StepResult(strings.ToUpper(step.Result)),
		})
	}
	if resp.Warning != nil {
		outcome.Warning = &domain.EditorialWarning{
			Category: resp.Warning.Category,
			Details:  resp.Warning.Details,
			Topics:   resp.Warning.Topics,
		}
	}
	return outcome, nil
}

// Revise produces a corrected draft addressing the given issues.
func (m *Model) Revise(ctx context.Context, article domain.EnrichedArticle, issues []domain.ReviewIssue) (domain.EnrichedArticle, error) {
	var user strings.Builder
	writeArticle(&user, article)
	writeIssues(&user, issues)

	var resp reviseResponse
	if err := m.completeJSON(ctx, reviseSystemPrompt, user.String(), 0.4, &resp); err != nil {
		return domain.EnrichedArticle{}, fmt.Errorf("revise: %w", err)
	}
	if resp.Title == "" || resp.Body == "" {
		return domain.EnrichedArticle{}, fmt.Errorf("revise: incomplete model output")
	}

	revised := article
	revised.Title = resp.Title
	revised.Lead = resp.Lead
	revised.Summary = resp.Summary
	revised.Body = resp.Body
	return revised, nil
}

// ValidateFixes checks the revised draft against the prior issue list.
func (m *Model) ValidateFixes(ctx context.Context, article domain.EnrichedArticle, issues []domain.ReviewIssue) (domain.FixValidation, error) {
	var user strings.Builder
	writeArticle(&user, article)
	writeIssues(&user, issues)

	var resp validateResponse
	if err := m.completeJSON(ctx, validateSystemPrompt, user.String(), 0.2, &resp); err != nil {
		return domain.FixValidation{}, fmt.Errorf("validate fixes: %w", err)
	}

	return domain.FixValidation{
		Passed:      resp.Passed,
		Remaining:   toIssues(resp.Remaining),
		Explanation: resp.Explanation,
	}, nil
}

func writeArticle(b *strings.Builder, article domain.EnrichedArticle) {
	fmt.Fprintf(b, "## Article\nTitle: %s\nLead: %s\nSummary: %s\n\n%s\n",
		article.Title, article.Lead, article.Summary, article.Body)
}

func writeIssues(b *strings.Builder, issues []domain.ReviewIssue) {
	b.WriteString("\n## Issues\n")
	for i, issue := range issues {
		fmt.Fprintf(b, "%d. [%s] %s: %s (suggestion: %s)\n",
			i+1, issue.Type, issue.Location, issue.Description, issue.Suggestion)
	}
}

func toIssues(in []issueJSON) []domain.ReviewIssue {
	out := make([]domain.ReviewIssue, 0, len(in))
	for _, issue := range in {
		out = append(out, domain.ReviewIssue{
			Type:        domain.IssueType(strings.ToLower(issue.Type)),
			Location:    issue.Location,
			Description: issue.Description,
			Suggestion:  issue.Suggestion,
		})
	}
	return out
}
