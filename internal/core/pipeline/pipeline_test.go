package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// fakeStage is a configurable stage for engine tests.
type fakeStage struct {
	name    string
	reads   []Field
	writes  []Field
	execute func(ctx context.Context, state *State) error
}

func (f *fakeStage) Name() string    { return f.name }
func (f *fakeStage) Reads() []Field  { return f.reads }
func (f *fakeStage) Writes() []Field { return f.writes }

func (f *fakeStage) Execute(ctx context.Context, state *State) error {
	if f.execute != nil {
		return f.execute(ctx, state)
	}
	for _, w := range f.writes {
		if err := state.Set(f.name, w, f.name+" output"); err != nil {
			return err
		}
	}
	return nil
}

func TestNewRejectsDuplicateWriter(t *testing.T) {
	_, err := New(nil,
		&fakeStage{name: "a", writes: []Field{"out"}},
		&fakeStage{name: "b", writes: []Field{"out"}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOwnershipViolation)
}

func TestNewRejectsStageClaimingInputField(t *testing.T) {
	_, err := New([]Field{"raw"},
		&fakeStage{name: "a", writes: []Field{"raw"}},
	)
	assert.ErrorIs(t, err, domain.ErrOwnershipViolation)
}

func TestNewRejectsReadOfUnproducedField(t *testing.T) {
	_, err := New([]Field{"raw"},
		&fakeStage{name: "a", reads: []Field{"missing"}, writes: []Field{"out"}},
	)
	assert.ErrorIs(t, err, domain.ErrNotYetProduced)
}

func TestNewRejectsReadOfLaterStageOutput(t *testing.T) {
	// Declared order matters: a stage cannot read what only a later stage
	// produces.
	_, err := New(nil,
		&fakeStage{name: "a", reads: []Field{"late"}, writes: []Field{"early"}},
		&fakeStage{name: "b", writes: []Field{"late"}},
	)
	assert.ErrorIs(t, err, domain.ErrNotYetProduced)
}

func TestRunExecutesInDeclaredOrder(t *testing.T) {
	var order []string
	mk := func(name string, reads, writes []Field) *fakeStage {
		return &fakeStage{
			name: name, reads: reads, writes: writes,
			execute: func(_ context.Context, state *State) error {
				order = append(order, name)
				for _, w := range writes {
					if err := state.Set(name, w, name); err != nil {
						return err
					}
				}
				return nil
			},
		}
	}

	p, err := New([]Field{"raw"},
		mk("extract", []Field{"raw"}, []Field{"articles"}),
		mk("plan", []Field{"articles"}, []Field{"plans"}),
		mk("generate", []Field{"articles", "plans"}, []Field{"enriched"}),
	)
	require.NoError(t, err)

	state := p.NewState()
	require.NoError(t, state.Seed("raw", "input"))
	require.NoError(t, p.Run(context.Background(), state))

	assert.Equal(t, []string{"extract", "plan", "generate"}, order)
	v, err := state.Get("enriched")
	require.NoError(t, err)
	assert.Equal(t, "generate", v)
}

func TestRunStageErrorIsFatal(t *testing.T) {
	boom := errors.New("boom")
	p, err := New(nil,
		&fakeStage{name: "a", writes: []Field{"x"}},
		&fakeStage{name: "b", reads: []Field{"x"}, writes: []Field{"y"}, execute: func(context.Context, *State) error {
			return boom
		}},
	)
	require.NoError(t, err)

	err = p.Run(context.Background(), p.NewState())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage b")
}

func TestRunDetectsMissingOutput(t *testing.T) {
	p, err := New(nil,
		&fakeStage{name: "a", writes: []Field{"x"}, execute: func(context.Context, *State) error {
			return nil // Never produces x.
		}},
	)
	require.NoError(t, err)

	err = p.Run(context.Background(), p.NewState())
	assert.ErrorIs(t, err, domain.ErrNotYetProduced)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := New(nil, &fakeStage{name: "a", writes: []Field{"x"}})
	require.NoError(t, err)

	err = p.Run(ctx, p.NewState())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCarriesFailedItemsThroughStages(t *testing.T) {
	seen := make(map[string][]string)
	mk := func(name string, writes []Field) *fakeStage {
		return &fakeStage{
			name: name, writes: writes,
			execute: func(_ context.Context, state *State) error {
				seen[name] = state.Surviving()
				if name == "first" {
					state.MarkFailed(name, "item-2", domain.ErrExtraction)
				}
				return state.Set(name, writes[0], "ok")
			},
		}
	}

	p, err := New(nil, mk("first", []Field{"a"}), mk("second", []Field{"b"}))
	require.NoError(t, err)

	state := p.NewState()
	state.AddItem("item-1")
	state.AddItem("item-2")
	state.AddItem("item-3")

	require.NoError(t, p.Run(context.Background(), state))

	assert.Equal(t, []string{"item-1", "item-2", "item-3"}, seen["first"])
	assert.Equal(t, []string{"item-1", "item-3"}, seen["second"])

	// The failed item is still tracked, preserving the audit trail.
	require.Len(t, state.Items(), 3)
	assert.Equal(t, ItemFailed, state.Item("item-2").State)
}
