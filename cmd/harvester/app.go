package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/contact-harvester/internal/cache"
	"github.com/jonathan/contact-harvester/internal/config"
	"github.com/jonathan/contact-harvester/internal/crawling"
	"github.com/jonathan/contact-harvester/internal/db"
	"github.com/jonathan/contact-harvester/internal/fetch"
	"github.com/jonathan/contact-harvester/internal/pipeline"
	"github.com/jonathan/contact-harvester/internal/ratelimit"
	"github.com/jonathan/contact-harvester/internal/research"
)

// app holds the long-lived dependencies shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	cache    *cache.ResultsCache
	database *db.DB // nil unless the postgres backend is selected
}

// loadConfig reads and validates settings. Cache-only commands pass requireSearch=false.
func loadConfig(requireSearch bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(requireSearch); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads configuration, builds the logger, and opens the cache backend.
func newApp(ctx context.Context, requireSearch bool) (*app, error) {
	cfg, err := loadConfig(requireSearch)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	var store cache.Store
	switch cfg.CacheBackend {
	case config.BackendPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.database = database
		store = db.NewCacheStore(database)
	default:
		store = cache.NewFileStore(cfg.CacheFile)
	}

	a.cache = cache.Open(ctx, store, cfg.CacheTTL(), logger)
	return a, nil
}

// Close releases the database pool and flushes the logger.
func (a *app) Close() {
	if a.database != nil {
		a.database.Close()
	}
	_ = a.logger.Sync()
}

// fetchOptions maps configuration onto the fetcher.
func (a *app) fetchOptions() *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.PageTimeout = a.cfg.PageTimeout
	opts.VerifyTimeout = a.cfg.VerifyTimeout
	opts.UserAgent = a.cfg.UserAgent
	opts.MaxRetries = a.cfg.MaxRetries
	opts.VerifyRetries = a.cfg.VerifyRetries
	opts.BackoffFactor = a.cfg.BackoffFactor
	opts.MaxBackoff = a.cfg.MaxBackoff
	return opts
}

// newRunner wires search, fetch, crawl, and cache into a pipeline runner.
func (a *app) newRunner(ctx context.Context, opts pipeline.RunOptions) (*pipeline.Runner, error) {
	searcher, err := research.NewCustomSearch(ctx, a.cfg.GoogleAPIKey, a.cfg.GoogleCSEID)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(a.fetchOptions(), a.logger)
	limiter := ratelimit.NewDomainLimiter(a.cfg.RequestsPerSecond, a.logger)
	crawler := crawling.NewSiteCrawler(fetcher, limiter, &crawling.Options{
		RespectRobots: a.cfg.RespectRobots,
		UserAgent:     a.cfg.UserAgent,
	}, a.logger)
	resolver := research.NewResolver(searcher, fetcher, &research.ResolverOptions{
		GuessFallback: a.cfg.GuessFallback,
	}, a.logger)

	if opts.Workers == 0 {
		opts.Workers = a.cfg.Workers
	}
	if a.database != nil && opts.Recorder == nil {
		opts.Recorder = a.database
	}
	return pipeline.NewRunner(resolver, crawler, a.cache, &opts, a.logger), nil
}
