package stages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/pipeline"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
)

type stubExtractor struct {
	content driven.ExtractedContent
	err     error
}

func (s *stubExtractor) Extract(_ context.Context, _ string) (driven.ExtractedContent, error) {
	return s.content, s.err
}

type stubProvider struct {
	queries []string
	pages   []domain.WebPage
	err     error
}

func (s *stubProvider) Search(_ context.Context, query string) ([]domain.WebPage, error) {
	s.queries = append(s.queries, query)
	return s.pages, s.err
}

func extractState(t *testing.T, stage *Extract, raw domain.RawArticle) *pipeline.State {
	t.Helper()
	p, err := pipeline.New(InputFields(), stage)
	require.NoError(t, err)

	state := p.NewState()
	state.AddItem("a")
	require.NoError(t, state.Seed(FieldRawArticles, map[string]domain.RawArticle{"a": raw}))
	require.NoError(t, state.Seed(FieldSeedArticles, map[string]domain.CanonicalArticle{
		"a": {ID: "a", ContentHash: "hash-a"},
	}))
	return state
}

func TestExtractUsesExtractedContent(t *testing.T) {
	stage := NewExtract(&stubExtractor{content: driven.ExtractedContent{
		Body:     "full article text",
		Language: "en",
		Type:     domain.TypeNews,
	}}, 1, time.Second)
	state := extractState(t, stage, domain.RawArticle{Link: "https://a.example"})

	require.NoError(t, stage.Execute(context.Background(), state))

	articles, err := pipeline.Value[map[string]domain.CanonicalArticle](state, FieldArticles)
	require.NoError(t, err)
	assert.Equal(t, "full article text", articles["a"].Content)
	assert.Equal(t, "en", articles["a"].Language)
	assert.Equal(t, domain.TypeNews, articles["a"].Type)
}

func TestExtractFallsBackToFeedBody(t *testing.T) {
	stage := NewExtract(&stubExtractor{err: errors.New("page unreachable")}, 1, time.Second)
	state := extractState(t, stage, domain.RawArticle{
		Link:         "https://a.example",
		Body:         "feed-provided body",
		FeedCategory: domain.TypePressRelease,
	})

	require.NoError(t, stage.Execute(context.Background(), state))

	// The item survives on the feed-provided text.
	assert.Equal(t, []string{"a"}, state.Surviving())

	articles, err := pipeline.Value[map[string]domain.CanonicalArticle](state, FieldArticles)
	require.NoError(t, err)
	assert.Equal(t, "feed-provided body", articles["a"].Content)
	assert.Equal(t, domain.TypePressRelease, articles["a"].Type)
}

func TestExtractFailsItemWithoutFallback(t *testing.T) {
	stage := NewExtract(&stubExtractor{err: errors.New("page unreachable")}, 1, time.Second)
	state := extractState(t, stage, domain.RawArticle{Link: "https://a.example"})

	require.NoError(t, stage.Execute(context.Background(), state))

	assert.Empty(t, state.Surviving())
	item := state.Item("a")
	require.NotNil(t, item)
	assert.Equal(t, StageExtract, item.FailedStage)
	assert.ErrorIs(t, item.Err, domain.ErrExtraction)
}

func TestExtractTypeDefaultsToOther(t *testing.T) {
	stage := NewExtract(&stubExtractor{content: driven.ExtractedContent{Body: "text"}}, 1, time.Second)
	state := extractState(t, stage, domain.RawArticle{Link: "https://a.example"})

	require.NoError(t, stage.Execute(context.Background(), state))

	articles, err := pipeline.Value[map[string]domain.CanonicalArticle](state, FieldArticles)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeOther, articles["a"].Type)
}

func searchState(t *testing.T, stage *Search, plan domain.ArticlePlan) *pipeline.State {
	t.Helper()
	p, err := pipeline.New([]pipeline.Field{FieldPlans}, stage)
	require.NoError(t, err)

	state := p.NewState()
	state.AddItem("a")
	require.NoError(t, state.Seed(FieldPlans, map[string]domain.ArticlePlan{"a": plan}))
	return state
}

func TestSearchFirstQueryOnlyRecordsRest(t *testing.T) {
	provider := &stubProvider{pages: []domain.WebPage{{Title: "Bg", URL: "https://bg.example"}}}
	stage := NewSearch(provider, true, 1, time.Second)
	state := searchState(t, stage, domain.ArticlePlan{
		ArticleID:     "a",
		SearchQueries: []string{"query one", "query two", "query three"},
	})

	require.NoError(t, stage.Execute(context.Background(), state))

	assert.Equal(t, []string{"query one"}, provider.queries)

	results, err := pipeline.Value[map[string][]domain.SearchResult](state, FieldSearchResults)
	require.NoError(t, err)
	require.Len(t, results["a"], 3)

	// Unissued queries keep their slot with no pages.
	assert.Len(t, results["a"][0].Pages, 1)
	assert.Equal(t, "query two", results["a"][1].Query)
	assert.Empty(t, results["a"][1].Pages)
	assert.Empty(t, results["a"][2].Pages)
}

func TestSearchIssuesAllQueriesWhenUnrestricted(t *testing.T) {
	provider := &stubProvider{}
	stage := NewSearch(provider, false, 1, time.Second)
	state := searchState(t, stage, domain.ArticlePlan{
		ArticleID:     "a",
		SearchQueries: []string{"query one", "query two"},
	})

	require.NoError(t, stage.Execute(context.Background(), state))
	assert.Equal(t, []string{"query one", "query two"}, provider.queries)
}

func TestSearchFailureDoesNotFailItem(t *testing.T) {
	provider := &stubProvider{err: errors.New("rate limited")}
	stage := NewSearch(provider, true, 1, time.Second)
	state := searchState(t, stage, domain.ArticlePlan{
		ArticleID:     "a",
		SearchQueries: []string{"query one"},
	})

	require.NoError(t, stage.Execute(context.Background(), state))

	assert.Equal(t, []string{"a"}, state.Surviving())

	results, err := pipeline.Value[map[string][]domain.SearchResult](state, FieldSearchResults)
	require.NoError(t, err)
	require.Len(t, results["a"], 1)
	assert.Empty(t, results["a"][0].Pages)
}
