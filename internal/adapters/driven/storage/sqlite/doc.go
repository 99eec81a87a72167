// Package sqlite implements the article store on SQLite. The database
// holds the canonical article index used for deduplication, duplicate
// references, and the committed enrichment results with their full review
// histories. Schema changes ship as embedded migrations.
package sqlite
