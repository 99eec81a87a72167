// Package rss provides a feed source adapter polling RSS/Atom feeds.
package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
	"github.com/newsdesk-io/newsdesk/internal/logger"
)

// Ensure FeedSource implements the interface.
var _ driven.FeedSource = (*FeedSource)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 20 * time.Second
	DefaultUserAgent = "newsdesk/1.0 (+https://github.com/newsdesk-io/newsdesk)"
)

// Config holds configuration for the RSS feed source.
type Config struct {
	// Feeds are the feeds to poll.
	Feeds []domain.FeedConfig

	// Timeout is the per-feed request timeout (default: 20s).
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// feedState tracks conditional-request and seen-item state for one feed.
type feedState struct {
	etag         string
	lastModified string
	seen         map[string]bool
}

// FeedSource polls a set of configured RSS/Atom feeds and yields items not
// seen in earlier cycles. Conditional requests (ETag/Last-Modified) skip
// unchanged feeds entirely.
type FeedSource struct {
	mu        sync.Mutex
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
	feeds     []domain.FeedConfig
	states    map[string]*feedState
}

// NewFeedSource creates a feed source for the configured feeds.
func NewFeedSource(cfg Config) *FeedSource {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &FeedSource{
		client:    &http.Client{Timeout: cfg.Timeout},
		parser:    gofeed.NewParser(),
		userAgent: cfg.UserAgent,
		feeds:     cfg.Feeds,
		states:    make(map[string]*feedState),
	}
}

// SetFeeds replaces the polled feed list. Per-feed state for feeds that
// remain configured is kept, so a reload does not re-deliver old items.
func (s *FeedSource) SetFeeds(feeds []domain.FeedConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds = feeds
}

// Fetch polls all feeds and returns up to limit new raw articles. An
// unreachable feed is skipped; Fetch fails only when every feed failed.
func (s *FeedSource) Fetch(ctx context.Context, limit int) ([]domain.RawArticle, error) {
	s.mu.Lock()
	feeds := make([]domain.FeedConfig, len(s.feeds))
	copy(feeds, s.feeds)
	s.mu.Unlock()

	if len(feeds) == 0 {
		return nil, fmt.Errorf("%w: no feeds configured", domain.ErrFeedUnavailable)
	}

	var out []domain.RawArticle
	var lastErr error
	failed := 0

	for _, feed := range feeds {
		if limit > 0 && len(out) >= limit {
			break
		}

		items, err := s.poll(ctx, feed)
		if err != nil {
			logger.Warn("feed %s (%s) failed: %v", feed.Name, feed.URL, err)
			failed++
			lastErr = err
			continue
		}
		out = append(out, items...)
	}

	if failed == len(feeds) {
		return nil, fmt.Errorf("all %d feeds failed, last: %w", failed, lastErr)
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// poll fetches one feed and returns its unseen items.
func (s *FeedSource) poll(ctx context.Context, feed domain.FeedConfig) ([]domain.RawArticle, error) {
	s.mu.Lock()
	state, ok := s.states[feed.URL]
	if !ok {
		state = &feedState{seen: make(map[string]bool)}
		s.states[feed.URL] = state
	}
	etag, lastModified := state.etag, state.lastModified
	s.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		logger.Debug("feed %s unchanged", feed.URL)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	parsed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state.etag = resp.Header.Get("ETag")
	state.lastModified = resp.Header.Get("Last-Modified")

	var out []domain.RawArticle
	for _, item := range parsed.Items {
		key := itemKey(item)
		if state.seen[key] {
			continue
		}
		state.seen[key] = true
		out = append(out, toRawArticle(item, feed))
	}
	return out, nil
}

// itemKey identifies a feed item across poll cycles: the GUID when present,
// the link otherwise.
func itemKey(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

// toRawArticle converts a parsed feed item into the domain representation.
func toRawArticle(item *gofeed.Item, feed domain.FeedConfig) domain.RawArticle {
	raw := domain.RawArticle{
		Title:        item.Title,
		Link:         item.Link,
		Summary:      item.Description,
		Body:         item.Content,
		GUID:         item.GUID,
		SourceDomain: hostOf(item.Link),
		FeedName:     feed.Name,
		FeedCategory: feed.Category,
	}
	if item.PublishedParsed != nil {
		raw.PublishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		raw.PublishedAt = *item.UpdatedParsed
	}
	return raw
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
