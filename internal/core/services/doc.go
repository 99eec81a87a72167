// Package services contains the core application services: article
// identity resolution with deduplication, and the run controller that
// drives one batch through the main pipeline and fans out the editorial
// subgraphs.
package services
