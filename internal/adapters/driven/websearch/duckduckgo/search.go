// Package duckduckgo provides a search provider adapter using the
// DuckDuckGo HTML endpoint, which needs no API key.
package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SearchProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "https://html.duckduckgo.com/html/"
	DefaultTimeout     = 15 * time.Second
	DefaultMaxResults  = 5
	DefaultUserAgent   = "newsdesk/1.0 (+https://github.com/newsdesk-io/newsdesk)"
	DefaultRateLimit   = rate.Limit(1) // requests per second
	DefaultRateBurst   = 1
)

// Config holds configuration for the DuckDuckGo provider.
type Config struct {
	// BaseURL is the HTML search endpoint (default: html.duckduckgo.com).
	BaseURL string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration

	// MaxResults caps how many result pages one query returns (default: 5).
	MaxResults int

	// UserAgent is sent with every request.
	UserAgent string

	// RateLimit and RateBurst throttle outgoing queries so bursts of
	// planned searches do not hammer the endpoint.
	RateLimit rate.Limit
	RateBurst int
}

// Provider issues web searches against the DuckDuckGo HTML endpoint and
// parses the result list.
type Provider struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	maxResults int
	limiter    *rate.Limiter
}

// NewProvider creates a DuckDuckGo search provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = DefaultRateBurst
	}

	return &Provider{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		maxResults: cfg.MaxResults,
		limiter:    rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
	}
}

// Search issues one query and returns the parsed result pages.
func (p *Provider) Search(ctx context.Context, query string) ([]domain.WebPage, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := p.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	var pages []domain.WebPage
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find(".result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		pages = append(pages, domain.WebPage{
			Title: strings.TrimSpace(link.Text()),
			URL:   resolveRedirect(href),
			Text:  strings.TrimSpace(sel.Find(".result__snippet").Text()),
		})
		return len(pages) < p.maxResults
	})

	return pages, nil
}

// resolveRedirect unwraps DuckDuckGo's redirect links, which carry the
// target in a uddg query parameter.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
