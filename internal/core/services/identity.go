package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
	"github.com/newsdesk-io/newsdesk/internal/logger"
)

// Resolution is the outcome of resolving one raw article's identity.
type Resolution struct {
	// Duplicate means the article matched an existing canonical identity,
	// either by exact hash or by semantic similarity.
	Duplicate bool

	// DuplicateOf is the existing canonical ID when Duplicate is set.
	DuplicateOf string

	// Article is the minted canonical skeleton (ID, hash, embedding and
	// feed metadata) when a new identity was created.
	Article domain.CanonicalArticle

	// Degraded means the embedding service was unavailable and only the
	// hash check ran.
	Degraded bool
}

// IdentityResolver decides new-versus-duplicate for incoming articles.
// The exact hash check always runs; the semantic near-duplicate check runs
// when an embedding service is available and compares cosine similarity
// against recent candidates. Embedding failure degrades to hash-only
// matching and never blocks ingestion.
type IdentityResolver struct {
	store     driven.ArticleStore
	embedder  driven.EmbeddingService
	threshold float64
	window    time.Duration
}

// NewIdentityResolver creates a resolver. embedder may be nil; dedup then
// runs hash-only.
func NewIdentityResolver(store driven.ArticleStore, embedder driven.EmbeddingService, cfg domain.Config) *IdentityResolver {
	return &IdentityResolver{
		store:     store,
		embedder:  embedder,
		threshold: cfg.SimilarityThreshold,
		window:    time.Duration(cfg.DedupWindowDays) * 24 * time.Hour,
	}
}

// Resolve computes the article's content identity and checks it against
// the persisted index. Exactly one canonical identity exists per distinct
// content: a second submission with an equal hash resolves as duplicate.
func (r *IdentityResolver) Resolve(ctx context.Context, raw domain.RawArticle) (Resolution, error) {
	body := raw.Body
	if body == "" {
		body = raw.Summary
	}
	hash := domain.ContentHash(raw.Title, body)

	existing, err := r.store.FindByHash(ctx, hash)
	if err == nil {
		if markErr := r.store.MarkDuplicate(ctx, raw.Link, existing); markErr != nil {
			logger.Warn("recording duplicate for %s: %v", raw.Link, markErr)
		}
		return Resolution{Duplicate: true, DuplicateOf: existing}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return Resolution{}, fmt.Errorf("identity lookup: %w", err)
	}

	embedding, degraded := r.embed(ctx, raw.Title, body)

	if embedding != nil {
		if dupID, found, err := r.nearDuplicate(ctx, embedding); err != nil {
			return Resolution{}, err
		} else if found {
			if markErr := r.store.MarkDuplicate(ctx, raw.Link, dupID); markErr != nil {
				logger.Warn("recording duplicate for %s: %v", raw.Link, markErr)
			}
			return Resolution{Duplicate: true, DuplicateOf: dupID}, nil
		}
	}

	article := domain.CanonicalArticle{
		ID:           uuid.NewString(),
		ContentHash:  hash,
		Title:        raw.Title,
		Link:         raw.Link,
		SourceDomain: raw.SourceDomain,
		PublishedAt:  raw.PublishedAt,
		Type:         raw.FeedCategory,
		Embedding:    embedding,
	}

	if err := r.store.SaveCanonical(ctx, article); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost the race to a concurrent ingest of the same content.
			existing, lookupErr := r.store.FindByHash(ctx, hash)
			if lookupErr != nil {
				return Resolution{}, fmt.Errorf("identity lookup after conflict: %w", lookupErr)
			}
			return Resolution{Duplicate: true, DuplicateOf: existing}, nil
		}
		return Resolution{}, fmt.Errorf("save canonical: %w", err)
	}

	return Resolution{Article: article, Degraded: degraded}, nil
}

// embed computes the semantic fingerprint, returning nil plus a degraded
// marker when the service is missing or failing.
func (r *IdentityResolver) embed(ctx context.Context, title, body string) ([]float32, bool) {
	if r.embedder == nil {
		return nil, true
	}
	embedding, err := r.embedder.Embed(ctx, domain.NormalizeContent(title, body))
	if err != nil {
		logger.Warn("embedding failed, dedup degraded to hash-only: %v", err)
		return nil, true
	}
	return embedding, false
}

// nearDuplicate compares the embedding against recent candidates.
func (r *IdentityResolver) nearDuplicate(ctx context.Context, embedding []float32) (string, bool, error) {
	since := time.Now().Add(-r.window)
	candidates, err := r.store.RecentCandidates(ctx, since)
	if err != nil {
		return "", false, fmt.Errorf("recent candidates: %w", err)
	}

	best, bestID := 0.0, ""
	for _, c := range candidates {
		sim := cosineSimilarity(embedding, c.Embedding)
		if sim > best {
			best, bestID = sim, c.ArticleID
		}
	}
	if best >= r.threshold {
		logger.Debug("near-duplicate of %s (similarity %.3f)", bestID, best)
		return bestID, true, nil
	}
	return "", false, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when dimensions differ or either vector is zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
