package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/config/file"
	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/embedding/ollama"
	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/extractor/web"
	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/feed/rss"
	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/interview/logdispatch"
	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/model/openai"
	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/storage/sqlite"
	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/websearch/duckduckgo"
	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/editorial"
	"github.com/newsdesk-io/newsdesk/internal/core/pipeline"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
	"github.com/newsdesk-io/newsdesk/internal/core/services"
	"github.com/newsdesk-io/newsdesk/internal/logger"
	"github.com/newsdesk-io/newsdesk/internal/stages"
)

// App holds the wired application: the run controller and the resources
// that need closing when the process exits.
type App struct {
	Runner    *services.RunController
	Feeds     *rss.FeedSource
	FeedsPath string
	Config    domain.Config

	store    *sqlite.Store
	embedder driven.EmbeddingService
}

// buildApp wires the full pipeline from configuration and flags.
func buildApp() (*App, error) {
	configStore, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	cfg := configStore.RunConfig()

	feedsPath := flagFeeds
	if feedsPath == "" {
		feedsPath = filepath.Join(filepath.Dir(configStore.Path()), "feeds.yaml")
	}
	feeds, err := file.LoadFeeds(feedsPath)
	if err != nil {
		return nil, fmt.Errorf("loading feeds: %w", err)
	}
	feedSource := rss.NewFeedSource(rss.Config{Feeds: feeds})

	store, err := sqlite.NewStore(flagDataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	model, err := openai.NewModel(openai.Config{
		APIKey:  apiKey(configStore),
		BaseURL: configStore.GetString("openai.base_url"),
		Model:   configStore.GetString("openai.model"),
		Timeout: cfg.CallTimeout,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	embedder := probeEmbedder(configStore)

	pipe, err := pipeline.New(stages.InputFields(),
		stages.NewExtract(web.NewExtractor(web.Config{}), cfg.StageConcurrency, cfg.CallTimeout),
		stages.NewPlan(model, cfg.StageConcurrency, cfg.CallTimeout),
		stages.NewSearch(duckduckgo.NewProvider(duckduckgo.Config{}), cfg.FirstQueryOnly, cfg.StageConcurrency, cfg.CallTimeout),
		stages.NewGenerate(model, cfg.StageConcurrency, cfg.CallTimeout),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	machine := editorial.NewMachine(model, store, logdispatch.NewDispatcher(), cfg.MaxRevisions, cfg.CallTimeout)
	resolver := services.NewIdentityResolver(store, embedder, cfg)
	runner := services.NewRunController(feedSource, resolver, pipe, machine, cfg)

	return &App{
		Runner:    runner,
		Feeds:     feedSource,
		FeedsPath: feedsPath,
		Config:    cfg,
		store:     store,
		embedder:  embedder,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			logger.Warn("closing embedder: %v", err)
		}
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("closing store: %v", err)
	}
}

// apiKey resolves the model API key: environment first, config second.
func apiKey(store *file.ConfigStore) string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return store.GetString("openai.api_key")
}

// probeEmbedder builds the embedding service and checks it is reachable.
// An unreachable service yields nil: deduplication degrades to hash-only
// matching rather than blocking the run.
func probeEmbedder(store *file.ConfigStore) driven.EmbeddingService {
	embedder := ollama.NewEmbeddingService(ollama.Config{
		BaseURL: store.GetString("ollama.base_url"),
		Model:   store.GetString("ollama.model"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := embedder.Ping(ctx); err != nil {
		logger.Warn("embedding service unavailable, dedup degrades to hash-only: %v", err)
		return nil
	}
	return embedder
}
