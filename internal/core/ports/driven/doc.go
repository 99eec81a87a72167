// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). The pipeline core calls every external
// collaborator through these contracts and nothing else, so each one is
// swappable in tests and deployments.
package driven
