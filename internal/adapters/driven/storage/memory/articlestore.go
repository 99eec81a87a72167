// Package memory provides in-memory store implementations for testing and
// ephemeral runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
)

// Ensure ArticleStore implements the interface.
var _ driven.ArticleStore = (*ArticleStore)(nil)

// ArticleStore is an in-memory implementation of driven.ArticleStore.
// Safe for concurrent use.
type ArticleStore struct {
	mu         sync.RWMutex
	byHash     map[string]string
	canonical  map[string]domain.CanonicalArticle
	ingestedAt map[string]time.Time
	duplicates map[string]string
	bundles    map[string]domain.ArticleBundle
}

// NewArticleStore creates an empty in-memory article store.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{
		byHash:     make(map[string]string),
		canonical:  make(map[string]domain.CanonicalArticle),
		ingestedAt: make(map[string]time.Time),
		duplicates: make(map[string]string),
		bundles:    make(map[string]domain.ArticleBundle),
	}
}

// FindByHash returns the canonical ID for an exact hash match.
func (s *ArticleStore) FindByHash(_ context.Context, hash string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHash[hash]
	if !ok {
		return "", domain.ErrNotFound
	}
	return id, nil
}

// RecentCandidates returns embedded canonical articles ingested since the
// given time.
func (s *ArticleStore) RecentCandidates(_ context.Context, since time.Time) ([]driven.DedupCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []driven.DedupCandidate
	for id, art := range s.canonical {
		if art.Embedding == nil {
			continue
		}
		if s.ingestedAt[id].Before(since) {
			continue
		}
		out = append(out, driven.DedupCandidate{ArticleID: id, Embedding: art.Embedding})
	}
	return out, nil
}

// SaveCanonical records a newly minted canonical identity.
func (s *ArticleStore) SaveCanonical(_ context.Context, article domain.CanonicalArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byHash[article.ContentHash]; exists {
		return domain.ErrAlreadyExists
	}
	s.byHash[article.ContentHash] = article.ID
	s.canonical[article.ID] = article
	s.ingestedAt[article.ID] = time.Now()
	return nil
}

// MarkDuplicate records that a link resolved to an existing identity.
func (s *ArticleStore) MarkDuplicate(_ context.Context, link, duplicateOf string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicates[link] = duplicateOf
	return nil
}

// Commit persists a terminal bundle. A repeat commit for the same article
// identity returns the existing ID, mirroring the gateway's
// duplicate-reference resolution of commit conflicts.
func (s *ArticleStore) Commit(_ context.Context, bundle domain.ArticleBundle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := bundle.Enriched.ArticleID
	if _, exists := s.bundles[id]; exists {
		return id, nil
	}
	s.bundles[id] = bundle
	return id, nil
}

// Close releases resources. No-op for the in-memory store.
func (s *ArticleStore) Close() error { return nil }

// Bundle returns a committed bundle for test assertions.
func (s *ArticleStore) Bundle(id string) (domain.ArticleBundle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bundles[id]
	return b, ok
}

// DuplicateOf returns the recorded duplicate mapping for a link.
func (s *ArticleStore) DuplicateOf(link string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.duplicates[link]
	return id, ok
}

// Len returns the number of canonical identities in the index.
func (s *ArticleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.canonical)
}
