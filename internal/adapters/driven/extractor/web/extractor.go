// Package web provides a content extractor adapter that fetches article
// pages and extracts their readable text.
package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.ContentExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 20 * time.Second
	DefaultUserAgent = "newsdesk/1.0 (+https://github.com/newsdesk-io/newsdesk)"

	// minBodyLength is the shortest extraction considered usable. Anything
	// shorter is treated as a failed extraction so the caller can fall back
	// to the feed-provided text.
	minBodyLength = 120
)

// Config holds configuration for the web extractor.
type Config struct {
	// Timeout is the per-page request timeout (default: 20s).
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Extractor fetches an article page and extracts the readable body text,
// the declared language and a type classification.
type Extractor struct {
	client    *http.Client
	userAgent string
}

// NewExtractor creates a web extractor.
func NewExtractor(cfg Config) *Extractor {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Extractor{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// Extract fetches the page and returns its structured content.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (driven.ExtractedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return driven.ExtractedContent{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return driven.ExtractedContent{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return driven.ExtractedContent{}, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return driven.ExtractedContent{}, fmt.Errorf("parse page: %w", err)
	}

	body := extractBody(doc)
	if len(body) < minBodyLength {
		return driven.ExtractedContent{}, fmt.Errorf("extracted only %d characters", len(body))
	}

	return driven.ExtractedContent{
		Body:     body,
		Language: detectLanguage(doc),
		Type:     classify(pageURL, doc),
	}, nil
}

// extractBody pulls the readable text out of the page. It prefers a
// semantic article container and falls back to all paragraphs.
func extractBody(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, aside, form, noscript").Remove()

	for _, selector := range []string{"article", "main", "[role=main]", ".article-body", ".post-content"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if text := paragraphText(sel); len(text) >= minBodyLength {
				return text
			}
		}
	}
	return paragraphText(doc.Selection)
}

// paragraphText joins the paragraph texts of a selection, one per line.
func paragraphText(sel *goquery.Selection) string {
	var parts []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

// detectLanguage reads the declared document language, e.g. <html lang="fi">.
func detectLanguage(doc *goquery.Document) string {
	lang, _ := doc.Find("html").Attr("lang")
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}

// classify guesses the article type from the URL path and page markup.
// Feed-level category hints take precedence over this guess upstream.
func classify(pageURL string, doc *goquery.Document) domain.ArticleType {
	path := strings.ToLower(pageURL)
	switch {
	case strings.Contains(path, "press-release"), strings.Contains(path, "pressrelease"),
		strings.Contains(path, "tiedote"):
		return domain.TypePressRelease
	case strings.Contains(path, "/blog"), strings.Contains(path, "blogi"):
		return domain.TypeBlog
	case strings.Contains(path, "/event"), strings.Contains(path, "tapahtuma"):
		return domain.TypeEvent
	case strings.Contains(path, "decision"), strings.Contains(path, "paatos"):
		return domain.TypeDecision
	}

	if ogType, ok := doc.Find(`meta[property="og:type"]`).Attr("content"); ok {
		if strings.EqualFold(ogType, "article") {
			return domain.TypeNews
		}
	}
	return ""
}
