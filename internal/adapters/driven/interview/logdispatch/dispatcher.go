// Package logdispatch provides an interview dispatcher that records
// hand-offs in the log. Actual interview execution (email and phone
// mechanics) lives outside this system; the dispatcher's contract is only
// to accept the hand-off.
package logdispatch

import (
	"context"
	"strings"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
	"github.com/newsdesk-io/newsdesk/internal/logger"
)

// Ensure Dispatcher implements the interface.
var _ driven.InterviewDispatcher = (*Dispatcher)(nil)

// Dispatcher logs interview hand-offs.
type Dispatcher struct{}

// NewDispatcher creates a logging interview dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch records the interview hand-off.
func (d *Dispatcher) Dispatch(_ context.Context, articleID string, decision domain.InterviewDecision) error {
	logger.Info("interview requested for article %s via %s (expertise: %s)",
		articleID, decision.Method, strings.Join(decision.ExpertiseAreas, ", "))
	if decision.Focus != "" {
		logger.Debug("interview focus for %s: %s", articleID, decision.Focus)
	}
	return nil
}
