// Package driving provides interfaces for inbound adapters (primary ports).
// The CLI drives batch runs exclusively through these contracts.
package driving
