package driven

import "context"

// EmbeddingService generates vector embeddings from text, used as the
// semantic fingerprint for near-duplicate detection. This is an optional
// service: when nil or failing, deduplication degrades to hash-only
// matching and never blocks ingestion.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
