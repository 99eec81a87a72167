package pipeline

import (
	"context"
	"fmt"

	"github.com/newsdesk-io/newsdesk/internal/logger"
)

// Pipeline is a fixed ordered sequence of stages sharing one ownership
// registry. The topology is validated once at construction: duplicate
// writers and reads of never-produced fields fail fast instead of
// surfacing mid-batch.
type Pipeline struct {
	stages []Stage
	owners map[Field]string
}

// New builds a pipeline from seeded input fields and an ordered stage
// list. It fails with an OwnershipError when two stages (or a stage and
// the input) claim the same field, and with a NotProducedError when a
// stage reads a field no earlier stage or input produces.
func New(inputs []Field, stages ...Stage) (*Pipeline, error) {
	owners := make(map[Field]string)
	for _, f := range inputs {
		owners[f] = InputOwner
	}

	produced := make(map[Field]bool, len(inputs))
	for _, f := range inputs {
		produced[f] = true
	}

	for _, st := range stages {
		for _, f := range st.Reads() {
			if !produced[f] {
				return nil, fmt.Errorf("stage %q: %w", st.Name(), &NotProducedError{Field: f})
			}
		}
		for _, f := range st.Writes() {
			if owner, claimed := owners[f]; claimed {
				return nil, &OwnershipError{Stage: st.Name(), Field: f, Owner: owner}
			}
			owners[f] = st.Name()
			produced[f] = true
		}
	}

	return &Pipeline{stages: stages, owners: owners}, nil
}

// NewState returns an empty state bound to this pipeline's ownership
// registry. The caller seeds input fields and registers batch items before
// calling Run.
func (p *Pipeline) NewState() *State {
	return newState(p.owners)
}

// Run executes every stage in declared order over the shared state. Stage
// completion is a barrier: a later stage never starts until the current one
// has returned and produced all its declared fields. A stage error is
// fatal; per-item failures are already recorded on the state by the stage
// itself and do not stop the run.
func (p *Pipeline) Run(ctx context.Context, state *State) error {
	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Section(st.Name())
		logger.Debug("stage %s: %d surviving items", st.Name(), len(state.Surviving()))

		if err := st.Execute(ctx, state); err != nil {
			return fmt.Errorf("stage %s: %w", st.Name(), err)
		}

		for _, f := range st.Writes() {
			if !state.Has(f) {
				return fmt.Errorf("stage %s finished without producing %q: %w",
					st.Name(), f, &NotProducedError{Field: f})
			}
		}
	}
	return nil
}
