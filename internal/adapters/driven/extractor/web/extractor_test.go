package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

const articleHTML = `<!DOCTYPE html>
<html lang="fi-FI">
<head><meta property="og:type" content="article"></head>
<body>
<nav><p>Home | News | Sports</p></nav>
<article>
<p>The city council decided on Monday to approve the new budget for the coming fiscal year.</p>
<p>The decision passed with a clear majority after two hours of debate in the council chamber.</p>
</article>
<footer><p>Copyright notice</p></footer>
<script>console.log("tracking")</script>
</body>
</html>`

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, html)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractArticleBody(t *testing.T) {
	srv := serveHTML(t, articleHTML)
	e := NewExtractor(Config{})

	content, err := e.Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, content.Body, "approve the new budget")
	assert.Contains(t, content.Body, "clear majority")

	// Navigation, footer and scripts are stripped.
	assert.NotContains(t, content.Body, "Home | News")
	assert.NotContains(t, content.Body, "Copyright")
	assert.NotContains(t, content.Body, "tracking")
}

func TestExtractDetectsLanguage(t *testing.T) {
	srv := serveHTML(t, articleHTML)
	e := NewExtractor(Config{})

	content, err := e.Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "fi", content.Language)
	assert.Equal(t, domain.TypeNews, content.Type)
}

func TestExtractTooShortFails(t *testing.T) {
	srv := serveHTML(t, `<html><body><p>Too short.</p></body></html>`)
	e := NewExtractor(Config{})

	_, err := e.Extract(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestExtractHTTPErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	e := NewExtractor(Config{})
	_, err := e.Extract(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClassifyFromURL(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	tests := []struct {
		url  string
		want domain.ArticleType
	}{
		{"https://example.org/press-release/new-plant", domain.TypePressRelease},
		{"https://example.org/blog/why-we-build", domain.TypeBlog},
		{"https://example.org/events/summer-fair", domain.TypeEvent},
		{"https://example.org/decisions/zoning-2026", domain.TypeDecision},
		{"https://example.org/articles/plain", domain.ArticleType("")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.url, doc), tt.url)
	}
}
