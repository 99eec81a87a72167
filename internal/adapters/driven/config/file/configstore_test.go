package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

func TestConfigStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("run.batch_size", int64(25)))
	require.NoError(t, store.Set("openai.model", "gpt-4o"))

	// A fresh store reads the persisted file.
	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 25, reloaded.GetInt("run.batch_size"))
	assert.Equal(t, "gpt-4o", reloaded.GetString("openai.model"))
}

func TestConfigStoreFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[run]
batch_size = 5
call_timeout_seconds = 30

[dedup]
similarity_threshold = 0.85
window_days = 7

[search]
first_query_only = false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	cfg := store.RunConfig()
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.InDelta(t, 0.85, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, 7, cfg.DedupWindowDays)
	assert.False(t, cfg.FirstQueryOnly)

	// Unset keys fall back to defaults.
	assert.Equal(t, domain.DefaultMaxRevisions, cfg.MaxRevisions)
	assert.Equal(t, domain.DefaultStageConcurrency, cfg.StageConcurrency)
}

func TestConfigStoreMissingFileStartsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))

	cfg := store.RunConfig()
	assert.Equal(t, domain.DefaultBatchSize, cfg.BatchSize)
	assert.True(t, cfg.FirstQueryOnly)
}

func TestLoadFeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	content := `
feeds:
  - name: City News
    url: https://news.example/rss
    category: news
    language: en
  - url: https://press.example/rss
    category: press_release
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	feeds, err := LoadFeeds(path)
	require.NoError(t, err)
	require.Len(t, feeds, 2)

	assert.Equal(t, "City News", feeds[0].Name)
	assert.Equal(t, domain.TypeNews, feeds[0].Category)
	assert.Equal(t, "en", feeds[0].Language)

	// A missing name defaults to the URL.
	assert.Equal(t, "https://press.example/rss", feeds[1].Name)
	assert.Equal(t, domain.TypePressRelease, feeds[1].Category)
}

func TestLoadFeedsRejectsMissingURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - name: broken\n"), 0600))

	_, err := LoadFeeds(path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFeedWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - url: https://a.example/rss\n"), 0600))

	loaded := make(chan []domain.FeedConfig, 1)
	watcher, err := NewFeedWatcher(path, func(feeds []domain.FeedConfig) {
		select {
		case loaded <- feeds:
		default:
		}
	})
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(path,
		[]byte("feeds:\n  - url: https://a.example/rss\n  - url: https://b.example/rss\n"), 0600))

	select {
	case feeds := <-loaded:
		assert.Len(t, feeds, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload feeds")
	}
}
