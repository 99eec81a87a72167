// Package editorial implements the per-article editorial state machine:
// review routes to publish, interview, revise or reject, and revisions
// loop through validation and re-review under a strict revision bound, so
// every run terminates. Each machine run owns its article exclusively; no
// two runs ever share mutable state.
package editorial
