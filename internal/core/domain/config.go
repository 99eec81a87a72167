package domain

import "time"

// Default configuration values.
const (
	DefaultBatchSize           = 10
	DefaultStageConcurrency    = 4
	DefaultCallTimeout         = 60 * time.Second
	DefaultMaxRevisions        = 2
	DefaultSimilarityThreshold = 0.92
	DefaultDedupWindowDays     = 14
	DefaultPollInterval        = 60 * time.Second
)

// Config is the recognised configuration surface for a batch run.
type Config struct {
	// BatchSize caps how many feed items one batch processes.
	BatchSize int

	// StageConcurrency bounds per-item workers within one pipeline stage.
	StageConcurrency int

	// CallTimeout bounds every external collaborator call. A timeout is a
	// per-item failure, never a hang.
	CallTimeout time.Duration

	// MaxRevisions bounds the editorial revise loop.
	MaxRevisions int

	// SimilarityThreshold is the cosine similarity above which a new
	// article is treated as a near-duplicate. Tuned empirically.
	SimilarityThreshold float64

	// DedupWindowDays bounds how far back the semantic duplicate check
	// looks for candidates.
	DedupWindowDays int

	// FirstQueryOnly restricts web search to the first planned query per
	// article, bounding cost and latency.
	FirstQueryOnly bool

	// PollInterval is the delay between batches in poll mode.
	PollInterval time.Duration
}

// DefaultConfig returns a Config populated with the default values.
func DefaultConfig() Config {
	return Config{
		BatchSize:           DefaultBatchSize,
		StageConcurrency:    DefaultStageConcurrency,
		CallTimeout:         DefaultCallTimeout,
		MaxRevisions:        DefaultMaxRevisions,
		SimilarityThreshold: DefaultSimilarityThreshold,
		DedupWindowDays:     DefaultDedupWindowDays,
		FirstQueryOnly:      true,
		PollInterval:        DefaultPollInterval,
	}
}

// Normalise fills zero values with defaults so a partially populated
// config file still yields a runnable configuration.
func (c *Config) Normalise() {
	d := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.StageConcurrency <= 0 {
		c.StageConcurrency = d.StageConcurrency
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = d.CallTimeout
	}
	if c.MaxRevisions <= 0 {
		c.MaxRevisions = d.MaxRevisions
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	if c.DedupWindowDays <= 0 {
		c.DedupWindowDays = d.DedupWindowDays
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
}
