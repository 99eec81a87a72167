package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/storage/memory"
	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// mockEmbedding implements driven.EmbeddingService for testing.
type mockEmbedding struct {
	vectors  map[string][]float32
	fallback []float32
	embedErr error
}

func (m *mockEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbedding) Dimensions() int           { return 2 }
func (m *mockEmbedding) ModelName() string         { return "mock" }
func (m *mockEmbedding) Ping(context.Context) error { return nil }
func (m *mockEmbedding) Close() error              { return nil }

func testConfig() domain.Config {
	cfg := domain.DefaultConfig()
	cfg.SimilarityThreshold = 0.92
	cfg.DedupWindowDays = 14
	return cfg
}

func rawArticle(title, body string) domain.RawArticle {
	return domain.RawArticle{
		Title:       title,
		Body:        body,
		Link:        "https://example.org/" + title,
		PublishedAt: time.Now(),
	}
}

func TestResolveMintsNewIdentity(t *testing.T) {
	store := memory.NewArticleStore()
	r := NewIdentityResolver(store, &mockEmbedding{fallback: []float32{1, 0}}, testConfig())

	res, err := r.Resolve(context.Background(), rawArticle("headline", "body text"))
	require.NoError(t, err)

	assert.False(t, res.Duplicate)
	assert.False(t, res.Degraded)
	assert.NotEmpty(t, res.Article.ID)
	assert.Equal(t, domain.ContentHash("headline", "body text"), res.Article.ContentHash)
	assert.Equal(t, []float32{1, 0}, res.Article.Embedding)
}

func TestResolveExactHashDuplicate(t *testing.T) {
	store := memory.NewArticleStore()
	r := NewIdentityResolver(store, &mockEmbedding{fallback: []float32{1, 0}}, testConfig())
	ctx := context.Background()

	first, err := r.Resolve(ctx, rawArticle("same story", "identical body"))
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	// Identical normalised content submitted twice resolves to one
	// canonical identity; formatting differences do not matter.
	second, err := r.Resolve(ctx, domain.RawArticle{
		Title: "  Same   STORY ",
		Body:  "Identical\n\tbody",
		Link:  "https://other.example/mirror",
	})
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Article.ID, second.DuplicateOf)
	assert.Equal(t, 1, store.Len())

	dupOf, ok := store.DuplicateOf("https://other.example/mirror")
	require.True(t, ok)
	assert.Equal(t, first.Article.ID, dupOf)
}

func TestResolveSemanticDuplicate(t *testing.T) {
	store := memory.NewArticleStore()
	embedder := &mockEmbedding{
		vectors: map[string][]float32{
			domain.NormalizeContent("story a", "body a"): {1, 0},
			domain.NormalizeContent("story b", "body b"): {0.99, 0.05},
		},
	}
	r := NewIdentityResolver(store, embedder, testConfig())
	ctx := context.Background()

	first, err := r.Resolve(ctx, rawArticle("story a", "body a"))
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	// Different hash, near-identical embedding: marked duplicate instead
	// of minting a second identity.
	second, err := r.Resolve(ctx, rawArticle("story b", "body b"))
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Article.ID, second.DuplicateOf)
	assert.Equal(t, 1, store.Len())
}

func TestResolveBelowThresholdMintsNew(t *testing.T) {
	store := memory.NewArticleStore()
	embedder := &mockEmbedding{
		vectors: map[string][]float32{
			domain.NormalizeContent("story a", "body a"): {1, 0},
			domain.NormalizeContent("story b", "body b"): {0, 1},
		},
	}
	r := NewIdentityResolver(store, embedder, testConfig())
	ctx := context.Background()

	_, err := r.Resolve(ctx, rawArticle("story a", "body a"))
	require.NoError(t, err)

	res, err := r.Resolve(ctx, rawArticle("story b", "body b"))
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 2, store.Len())
}

func TestResolveEmbeddingFailureDegrades(t *testing.T) {
	store := memory.NewArticleStore()
	r := NewIdentityResolver(store, &mockEmbedding{embedErr: errors.New("connection refused")}, testConfig())

	// Embedding failure never blocks ingestion: the identity is minted
	// from the hash alone and marked degraded.
	res, err := r.Resolve(context.Background(), rawArticle("headline", "body"))
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.True(t, res.Degraded)
	assert.Nil(t, res.Article.Embedding)
}

func TestResolveWithoutEmbedderIsHashOnly(t *testing.T) {
	store := memory.NewArticleStore()
	r := NewIdentityResolver(store, nil, testConfig())

	res, err := r.Resolve(context.Background(), rawArticle("headline", "body"))
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.True(t, res.Degraded)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Zero(t, cosineSimilarity(nil, nil))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}
