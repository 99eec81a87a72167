package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func canonical(id, hash string) domain.CanonicalArticle {
	return domain.CanonicalArticle{
		ID:           id,
		ContentHash:  hash,
		Title:        "Title of " + id,
		Content:      "content",
		Language:     "en",
		Type:         domain.TypeNews,
		Link:         "https://news.example/" + id,
		SourceDomain: "news.example",
		PublishedAt:  time.Now().UTC(),
		Embedding:    []float32{0.5, -0.25, 1},
	}
}

func TestSaveCanonicalAndFindByHash(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.FindByHash(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SaveCanonical(ctx, canonical("a", "hash-a")))

	id, err := store.FindByHash(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, "a", id)
}

func TestSaveCanonicalHashConflict(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCanonical(ctx, canonical("a", "hash-a")))

	// The unique content hash turns a concurrent double-mint into a
	// duplicate signal instead of a second identity.
	err := store.SaveCanonical(ctx, canonical("b", "hash-a"))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRecentCandidatesRoundTripsEmbedding(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCanonical(ctx, canonical("a", "hash-a")))

	noEmbedding := canonical("b", "hash-b")
	noEmbedding.Embedding = nil
	require.NoError(t, store.SaveCanonical(ctx, noEmbedding))

	candidates, err := store.RecentCandidates(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "a", candidates[0].ArticleID)
	assert.Equal(t, []float32{0.5, -0.25, 1}, candidates[0].Embedding)

	candidates, err = store.RecentCandidates(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestMarkDuplicate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCanonical(ctx, canonical("a", "hash-a")))
	require.NoError(t, store.MarkDuplicate(ctx, "https://mirror.example/a", "a"))

	// Re-marking the same link is not an error.
	require.NoError(t, store.MarkDuplicate(ctx, "https://mirror.example/a", "a"))
}

func testBundle(id string) domain.ArticleBundle {
	warning := &domain.EditorialWarning{
		Category: "SensitiveTopic",
		Details:  "covers an ongoing investigation",
		Topics:   []string{"crime"},
	}
	return domain.ArticleBundle{
		Canonical: canonical(id, "hash-"+id),
		Plan: domain.ArticlePlan{
			ArticleID:     id,
			Headline:      "Planned headline",
			Summary:       "plan summary",
			Keywords:      []string{"budget", "council"},
			Categories:    []string{"Politics"},
			SearchQueries: []string{"city budget 2026", "council decision"},
		},
		Enriched: domain.EnrichedArticle{
			ArticleID:     id,
			Title:         "Final headline",
			Lead:          "Lead paragraph.",
			Summary:       "Short summary.",
			Body:          "Body text.",
			Language:      "en",
			Keywords:      []string{"budget"},
			Categories:    []string{"Politics"},
			Locations:     []domain.LocationTag{{Country: "Finland", City: "Tampere"}},
			References:    []domain.ArticleReference{{Title: "Background", URL: "https://ref.example"}},
			Status:        domain.EnrichmentSuccess,
			RevisionCount: 1,
			GeneratedAt:   time.Now().UTC(),
		},
		History: []domain.ReviewOutcome{
			{
				ArticleID:     id,
				RevisionCount: 0,
				Decision:      domain.DecisionRevise,
				Reviewer:      "gpt-4o-mini",
				Issues: []domain.ReviewIssue{{
					Type:        domain.IssueAccuracy,
					Location:    "paragraph 2",
					Description: "unverified claim",
					Suggestion:  "cite the source",
				}},
				ReviewedAt: time.Now().UTC(),
			},
			{
				ArticleID:       id,
				RevisionCount:   1,
				Decision:        domain.DecisionPublish,
				Reconsideration: true,
				Reviewer:        "gpt-4o-mini",
				Warning:         warning,
				Headline:        domain.HeadlineAssessment{Featured: true, Reasoning: "major local impact"},
				ReviewedAt:      time.Now().UTC(),
			},
		},
		Terminal: domain.DecisionPublish,
	}
}

func TestCommitPersistsBundle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	bundle := testBundle("art-1")
	require.NoError(t, store.SaveCanonical(ctx, bundle.Canonical))

	id, err := store.Commit(ctx, bundle)
	require.NoError(t, err)
	assert.Equal(t, "art-1", id)

	published, err := store.EnrichedByStatus(ctx, domain.DecisionPublish, 10)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "Final headline", published[0].Title)
	assert.Equal(t, 1, published[0].RevisionCount)
	assert.Equal(t, []domain.LocationTag{{Country: "Finland", City: "Tampere"}}, published[0].Locations)

	history, err := store.History(ctx, "art-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.DecisionRevise, history[0].Decision)
	require.Len(t, history[0].Issues, 1)
	assert.Equal(t, domain.IssueAccuracy, history[0].Issues[0].Type)

	final := history[1]
	assert.True(t, final.Reconsideration)
	require.NotNil(t, final.Warning)
	assert.Equal(t, "SensitiveTopic", final.Warning.Category)
	assert.True(t, final.Headline.Featured)
}

func TestCommitIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	bundle := testBundle("art-1")
	require.NoError(t, store.SaveCanonical(ctx, bundle.Canonical))

	id, err := store.Commit(ctx, bundle)
	require.NoError(t, err)

	// A repeat commit resolves to the stored record.
	changed := bundle
	changed.Enriched.Body = "changed"
	id2, err := store.Commit(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	published, err := store.EnrichedByStatus(ctx, domain.DecisionPublish, 10)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "Body text.", published[0].Body)
}

func TestEnrichedByStatusFilters(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	published := testBundle("art-1")
	require.NoError(t, store.SaveCanonical(ctx, published.Canonical))
	_, err := store.Commit(ctx, published)
	require.NoError(t, err)

	rejected := testBundle("art-2")
	rejected.Terminal = domain.DecisionReject
	require.NoError(t, store.SaveCanonical(ctx, rejected.Canonical))
	_, err = store.Commit(ctx, rejected)
	require.NoError(t, err)

	got, err := store.EnrichedByStatus(ctx, domain.DecisionReject, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "art-2", got[0].ArticleID)

	all, err := store.EnrichedByStatus(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMigrationsApplyOnce(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening runs migrations again; applied versions are skipped.
	store, err = NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
