package pipeline

import "context"

// Stage is one unit of pipeline work. A stage declares the fields it reads
// and the fields it exclusively owns; the engine rejects any pipeline where
// two stages claim the same output, and the state rejects any write outside
// a stage's declared set at run time.
//
// Stages process the full batch of surviving items and are pure with
// respect to the shared state: they produce new fields, never mutate ones
// they do not own. Per-item problems are recorded with State.MarkFailed and
// do not abort the batch; an error returned from Execute is fatal and halts
// the whole run.
type Stage interface {
	// Name identifies the stage in errors, logs and item audit trails.
	Name() string

	// Reads declares the fields the stage consumes.
	Reads() []Field

	// Writes declares the fields the stage exclusively owns. Every
	// declared field must be produced before Execute returns.
	Writes() []Field

	// Execute runs the stage over the batch.
	Execute(ctx context.Context, state *State) error
}
