package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

func TestArticleStoreHashIndex(t *testing.T) {
	store := NewArticleStore()
	ctx := context.Background()

	_, err := store.FindByHash(ctx, "h1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	art := domain.CanonicalArticle{ID: "id-1", ContentHash: "h1", Title: "t"}
	require.NoError(t, store.SaveCanonical(ctx, art))

	id, err := store.FindByHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)

	// A second save with the same hash reports the conflict.
	err = store.SaveCanonical(ctx, domain.CanonicalArticle{ID: "id-2", ContentHash: "h1"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, 1, store.Len())
}

func TestArticleStoreRecentCandidates(t *testing.T) {
	store := NewArticleStore()
	ctx := context.Background()

	require.NoError(t, store.SaveCanonical(ctx, domain.CanonicalArticle{
		ID: "a", ContentHash: "h-a", Embedding: []float32{1, 0},
	}))
	require.NoError(t, store.SaveCanonical(ctx, domain.CanonicalArticle{
		ID: "b", ContentHash: "h-b", // No embedding: excluded.
	}))

	candidates, err := store.RecentCandidates(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "a", candidates[0].ArticleID)

	// Nothing within a future window.
	candidates, err = store.RecentCandidates(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestArticleStoreCommitIdempotent(t *testing.T) {
	store := NewArticleStore()
	ctx := context.Background()

	bundle := domain.ArticleBundle{
		Enriched: domain.EnrichedArticle{ArticleID: "id-1", Body: "original"},
		Terminal: domain.DecisionPublish,
	}
	id, err := store.Commit(ctx, bundle)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)

	// A concurrent duplicate commit resolves to the existing record.
	later := bundle
	later.Enriched.Body = "changed"
	id2, err := store.Commit(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id2)

	stored, ok := store.Bundle("id-1")
	require.True(t, ok)
	assert.Equal(t, "original", stored.Enriched.Body)
}

func TestArticleStoreMarkDuplicate(t *testing.T) {
	store := NewArticleStore()
	require.NoError(t, store.MarkDuplicate(context.Background(), "https://example.org/a", "id-1"))

	id, ok := store.DuplicateOf("https://example.org/a")
	require.True(t, ok)
	assert.Equal(t, "id-1", id)
}
