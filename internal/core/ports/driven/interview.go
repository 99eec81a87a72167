package driven

import (
	"context"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// InterviewDispatcher accepts interview hand-offs for articles the review
// routed to the interview path. Dispatch returns immediately; interview
// execution (email/phone mechanics) happens elsewhere.
type InterviewDispatcher interface {
	Dispatch(ctx context.Context, articleID string, decision domain.InterviewDecision) error
}
