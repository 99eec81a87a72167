// Package pipeline implements the batch pipeline engine: a typed,
// append-only shared state threaded through a fixed sequence of stages,
// with field-level write ownership checked at run time. The ownership
// registry makes "no stage overwrites another stage's data" a structural,
// checkable invariant rather than a convention.
package pipeline
