package domain

import "time"

// Decision is the editorial routing decision for one review pass.
type Decision string

const (
	DecisionPublish   Decision = "publish"
	DecisionInterview Decision = "interview"
	DecisionRevise    Decision = "revise"
	DecisionReject    Decision = "reject"
)

// Terminal reports whether the decision ends the editorial lifecycle.
func (d Decision) Terminal() bool {
	return d == DecisionPublish || d == DecisionInterview || d == DecisionReject
}

// RejectReasonRevisionExhausted marks a reject issued because the bounded
// revision loop ran out of attempts rather than an editorial judgement.
const RejectReasonRevisionExhausted = "revision-exhausted"

// IssueType categorises a review issue.
type IssueType string

const (
	IssueLegal    IssueType = "legal"
	IssueAccuracy IssueType = "accuracy"
	IssueEthics   IssueType = "ethics"
	IssueStyle    IssueType = "style"
	IssueOther    IssueType = "other"
)

// ReviewIssue is one problem the reviewer found, with a suggested fix.
type ReviewIssue struct {
	// Type categorises the issue.
	Type IssueType

	// Location says where in the article the issue appears.
	Location string

	// Description explains the problem.
	Description string

	// Suggestion proposes a correction.
	Suggestion string
}

// StepResult is the outcome of one reasoning step.
type StepResult string

const (
	StepPass StepResult = "PASS"
	StepFail StepResult = "FAIL"
	StepInfo StepResult = "INFO"
)

// ReasoningStep is one logged evaluation step from the review model.
type ReasoningStep struct {
	// StepID is the sequential number of the step.
	StepID int

	// Action performed, e.g. "Evaluate Accuracy".
	Action string

	// Observation made during the step.
	Observation string

	// Result of the step.
	Result StepResult
}

// EditorialWarning is a structured reader-facing warning for sensitive
// topics, attached when a review passed only after reconsideration.
type EditorialWarning struct {
	// Category is the primary reason, e.g. "SensitiveTopic", "Violence".
	Category string

	// Details is the free-form explanation shown to readers.
	Details string

	// Topics are the specific topics that triggered the warning.
	Topics []string
}

// HeadlineAssessment decides front-page placement, independently of the
// accept/reject decision.
type HeadlineAssessment struct {
	// Featured marks the article for front-page placement.
	Featured bool

	// Reasoning explains the placement decision.
	Reasoning string
}

// InterviewMethod selects how an interview is conducted.
type InterviewMethod string

const (
	InterviewPhone InterviewMethod = "phone"
	InterviewEmail InterviewMethod = "email"
)

// InterviewDecision is the reviewer's call on whether the article needs an
// interview before publication, handed to the interview dispatcher.
type InterviewDecision struct {
	// Needed marks the article for interview follow-up.
	Needed bool

	// Method is phone or email.
	Method InterviewMethod

	// ExpertiseAreas lists the expertise the interviewee should have.
	ExpertiseAreas []string

	// Focus names the specific topics the interview should cover.
	Focus string

	// Justification explains why an interview is needed.
	Justification string
}

// ReviewOutcome is one review attempt for an article. Identity is the
// ArticleID plus RevisionCount; outcomes are appended, never overwritten,
// so the full history of a lifecycle is retained. The terminal decision is
// the outcome with the highest RevisionCount whose decision is not revise.
type ReviewOutcome struct {
	// ArticleID references the reviewed EnrichedArticle.
	ArticleID string

	// RevisionCount is the article's revision counter at review time.
	// Strictly increasing within one editorial lifecycle.
	RevisionCount int

	// Decision is the routing decision for this pass.
	Decision Decision

	// RejectReason is set when Decision is reject, e.g.
	// RejectReasonRevisionExhausted.
	RejectReason string

	// Reconsideration marks a re-review after a validated revision.
	Reconsideration bool

	// Reviewer identifies the reviewing model or validator.
	Reviewer string

	// CheckedCriteria are all criteria evaluated in this pass.
	CheckedCriteria []string

	// FailedCriteria is the subset of criteria that did not pass.
	FailedCriteria []string

	// Steps are the logged reasoning steps.
	Steps []ReasoningStep

	// Explanation ties the evaluation to the decision.
	Explanation string

	// Issues found during the review, empty on a clean accept.
	Issues []ReviewIssue

	// Warning is an optional reader-facing warning.
	Warning *EditorialWarning

	// Headline is the newsworthiness assessment. Consulted only on the
	// publish path.
	Headline HeadlineAssessment

	// Interview is the interview decision. Consulted only when Decision
	// is interview.
	Interview InterviewDecision

	// ReviewedAt is when this pass completed.
	ReviewedAt time.Time
}

// FixValidation is the validator's verdict on whether a revision actually
// addressed the flagged issues.
type FixValidation struct {
	// Passed means every prior issue was resolved or explicitly re-justified.
	Passed bool

	// Remaining lists the issues still unresolved after the revision.
	Remaining []ReviewIssue

	// Explanation summarises the validation.
	Explanation string
}

// TerminalOutcome returns the outcome that ended the lifecycle: the entry
// with the highest RevisionCount whose decision is not revise. Returns nil
// when the history has no terminal entry.
func TerminalOutcome(history []ReviewOutcome) *ReviewOutcome {
	var terminal *ReviewOutcome
	for i := range history {
		o := &history[i]
		if o.Decision == DecisionRevise {
			continue
		}
		if terminal == nil || o.RevisionCount > terminal.RevisionCount {
			terminal = o
		}
	}
	return terminal
}
