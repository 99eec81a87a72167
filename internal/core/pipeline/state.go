package pipeline

import (
	"fmt"
	"sync"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// Field names one slot in the shared pipeline state.
type Field string

// InputOwner is the pseudo-stage that owns fields seeded by the run
// controller before the first stage executes.
const InputOwner = "input"

// OwnershipError reports a stage writing a field it does not own, or
// writing a single-write field twice. It is a programming error and halts
// the batch.
type OwnershipError struct {
	// Stage is the offending writer.
	Stage string

	// Field is the slot being written.
	Field Field

	// Owner is the registered owner of the field, empty if unregistered.
	Owner string

	// Rewrite marks a second write to an already-produced field.
	Rewrite bool
}

func (e *OwnershipError) Error() string {
	if e.Rewrite {
		return fmt.Sprintf("stage %q rewrote field %q: %v", e.Stage, e.Field, domain.ErrOwnershipViolation)
	}
	return fmt.Sprintf("stage %q wrote field %q owned by %q: %v", e.Stage, e.Field, e.Owner, domain.ErrOwnershipViolation)
}

func (e *OwnershipError) Unwrap() error { return domain.ErrOwnershipViolation }

// NotProducedError reports a read of a field before its owner stage ran.
// It is a programming error and halts the batch.
type NotProducedError struct {
	Field Field
}

func (e *NotProducedError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, domain.ErrNotYetProduced)
}

func (e *NotProducedError) Unwrap() error { return domain.ErrNotYetProduced }

// ItemState tracks one article's progress through the pipeline.
type ItemState string

const (
	// ItemPending means the item is still flowing through stages.
	ItemPending ItemState = "pending"

	// ItemFailed means a stage recorded a per-item failure. The item is
	// carried as skipped through later stages to preserve the audit trail.
	ItemFailed ItemState = "failed"
)

// Item is one article's tracking record within a batch. Failed items are
// never removed from the batch, only excluded from later stage work.
type Item struct {
	// ID is the canonical article identity.
	ID string

	// State is pending or failed.
	State ItemState

	// FailedStage names the stage that recorded the failure.
	FailedStage string

	// Err is the recorded failure.
	Err error

	// Degraded marks enrichment that ran without search context.
	Degraded bool
}

// State is the append-only shared record threaded through all stages.
// Every field has exactly one owner stage fixed at pipeline construction;
// all fields are single-write. Item tracking is kept alongside the fields
// so stages can record per-item failures without owning a field for it.
type State struct {
	mu     sync.RWMutex
	owners map[Field]string
	values map[Field]any
	order  []string
	items  map[string]*Item
}

// newState builds a state bound to the given ownership registry.
func newState(owners map[Field]string) *State {
	o := make(map[Field]string, len(owners))
	for f, s := range owners {
		o[f] = s
	}
	return &State{
		owners: o,
		values: make(map[Field]any),
		items:  make(map[string]*Item),
	}
}

// AddItem registers one article in the batch, in input order.
func (s *State) AddItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; ok {
		return
	}
	s.items[id] = &Item{ID: id, State: ItemPending}
	s.order = append(s.order, id)
}

// Items returns every tracked item in input order.
func (s *State) Items() []*Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Item returns the tracking record for one article, or nil.
func (s *State) Item(id string) *Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[id]
}

// Surviving returns the IDs of items that have not failed, in input order.
func (s *State) Surviving() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if s.items[id].State == ItemPending {
			out = append(out, id)
		}
	}
	return out
}

// MarkFailed records a per-item failure for one article. The first failure
// wins; later stages see the item as skipped.
func (s *State) MarkFailed(stage, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.State == ItemFailed {
		return
	}
	it.State = ItemFailed
	it.FailedStage = stage
	it.Err = err
}

// MarkDegraded notes that one article was enriched without search context.
func (s *State) MarkDegraded(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[id]; ok {
		it.Degraded = true
	}
}

// Set writes a field on behalf of a stage. It fails with an OwnershipError
// when the stage is not the registered owner or the field already has a
// value: every field is single-write.
func (s *State) Set(stage string, f Field, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.owners[f]
	if !ok || owner != stage {
		return &OwnershipError{Stage: stage, Field: f, Owner: owner}
	}
	if _, exists := s.values[f]; exists {
		return &OwnershipError{Stage: stage, Field: f, Owner: owner, Rewrite: true}
	}
	s.values[f] = v
	return nil
}

// Seed writes an input field before any stage runs. Only fields registered
// to the input pseudo-stage may be seeded.
func (s *State) Seed(f Field, v any) error {
	return s.Set(InputOwner, f, v)
}

// Get reads a field, failing with a NotProducedError when the owning stage
// has not run yet.
func (s *State) Get(f Field) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[f]
	if !ok {
		return nil, &NotProducedError{Field: f}
	}
	return v, nil
}

// Has reports whether a field has been produced.
func (s *State) Has(f Field) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[f]
	return ok
}

// Value reads a field and asserts its concrete type. A missing field
// yields NotProducedError; a type mismatch is a programming error.
func Value[T any](s *State, f Field) (T, error) {
	var zero T
	v, err := s.Get(f)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("field %q holds %T, not %T: %w", f, v, zero, domain.ErrInvalidInput)
	}
	return typed, nil
}
