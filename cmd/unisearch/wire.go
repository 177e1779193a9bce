package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/adapters/driven/config/file"
	"github.com/four-robots/unisearch/internal/adapters/driven/embedding/ollama"
	"github.com/four-robots/unisearch/internal/adapters/driven/embedding/openai"
	"github.com/four-robots/unisearch/internal/adapters/driven/facets"
	"github.com/four-robots/unisearch/internal/adapters/driven/metrics"
	"github.com/four-robots/unisearch/internal/adapters/driven/query/heuristic"
	"github.com/four-robots/unisearch/internal/adapters/driven/storage/badger"
	"github.com/four-robots/unisearch/internal/adapters/driven/storage/memory"
	"github.com/four-robots/unisearch/internal/adapters/driven/storage/redis"
	"github.com/four-robots/unisearch/internal/adapters/driven/storage/sqlite"
	"github.com/four-robots/unisearch/internal/adapters/driving/cli"
	"github.com/four-robots/unisearch/internal/connectors/github"
	"github.com/four-robots/unisearch/internal/connectors/local"
	"github.com/four-robots/unisearch/internal/connectors/resilient"
	"github.com/four-robots/unisearch/internal/connectors/scraper"
	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
	"github.com/four-robots/unisearch/internal/core/services"
	"github.com/four-robots/unisearch/internal/logger"
)

// Configuration keys read only by the composition root.
const (
	keyLogLevel         = "log.level"
	keyCacheBackend     = "cache.backend"
	keyCacheTTL         = "cache.ttl_seconds"
	keyCacheMaxEntries  = "cache.max_entries"
	keyRedisAddr        = "cache.redis.addr"
	keyRedisPassword    = "cache.redis.password"
	keyRedisDB          = "cache.redis.db"
	keyBadgerPath       = "cache.badger.path"
	keyAnalyticsEnabled = "analytics.enabled"
	keyWorkersPoolSize  = "workers.pool_size"
	keyEmbedProvider    = "semantic.provider"
	keyEmbedURL         = "semantic.url"
	keyEmbedModel       = "semantic.model"
	keyEmbedAPIKey      = "semantic.api_key"

	envRedisPassword = "UNISEARCH_REDIS_PASSWORD"
	envOpenAIKey     = "OPENAI_API_KEY"

	defaultRedisAddr = "localhost:6379"
)

// Cache backends accepted by cache.backend.
const (
	cacheMemory = "memory"
	cacheRedis  = "redis"
	cacheBadger = "badger"
	cacheNone   = "none"
)

// closers releases resources in reverse order of acquisition.
type closers []func() error

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// build wires the application for one command invocation.
func build(ctx context.Context, opts cli.Options) (a *cli.App, err error) {
	dir := opts.ConfigDir
	if dir == "" {
		if dir, err = file.DefaultDir(); err != nil {
			return nil, err
		}
	}

	cfgStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:   cfgStore.GetString(keyLogLevel),
		Format:  opts.LogFormat,
		Verbose: opts.Verbose,
	})

	var cleanup closers
	defer func() {
		if err != nil {
			_ = cleanup.close()
		}
	}()

	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	cleanup = append(cleanup, store.Close)
	docs := store.Documents()

	cache, closeCache, err := openCache(ctx, cfgStore, dir, log)
	if err != nil {
		return nil, err
	}
	if closeCache != nil {
		cleanup = append(cleanup, closeCache)
	}

	ports, err := sourcePorts(ctx, cfgStore, docs, log)
	if err != nil {
		return nil, err
	}
	ports = resilient.WrapAll(ports, resilient.ParseSettings(cfgStore), log)

	dispatcher, err := services.NewDispatcher(cfgStore.GetInt(keyWorkersPoolSize), log)
	if err != nil {
		return nil, fmt.Errorf("start worker pool: %w", err)
	}
	cleanup = append(cleanup, func() error {
		dispatcher.Drain(5 * time.Second)
		dispatcher.Release()
		return nil
	})

	prom := metrics.New(true)
	svcOpts := []services.Option{
		services.WithLogger(log),
		services.WithConfig(services.LoadSearchConfig(cfgStore)),
		services.WithFacets(facets.NewGenerator(log)),
		services.WithMetrics(prom),
		services.WithDispatcher(dispatcher),
	}
	if cache != nil {
		svcOpts = append(svcOpts, services.WithCache(cache))
	}
	if enabled(cfgStore, keyAnalyticsEnabled) {
		svcOpts = append(svcOpts, services.WithAnalytics(store.Analytics()))
	}
	search := services.NewSearchService(ports, heuristic.New(log), svcOpts...)

	return &cli.App{
		Search:    search,
		Documents: services.NewDocumentService(docs, cache, log),
		Config:    cfgStore,
		Log:       log,
		Metrics:   prom.Handler(),
		Watch: func(ctx context.Context) error {
			return cfgStore.Watch(ctx, log, file.DefaultReloadDebounce, func(s driven.ConfigStore) {
				search.UpdateConfig(services.LoadSearchConfig(s))
			})
		},
		Close: cleanup.close,
	}, nil
}

// openCache builds the response cache named by cache.backend. A nil cache means caching is off.
func openCache(ctx context.Context, store driven.ConfigStore, dir string,
	log *zap.Logger) (driven.CacheGateway, func() error, error) {
	ttl := time.Duration(store.GetInt(keyCacheTTL)) * time.Second

	backend := store.GetString(keyCacheBackend)
	switch backend {
	case "", cacheMemory:
		return memory.NewCache(ttl, store.GetInt(keyCacheMaxEntries)), nil, nil
	case cacheNone:
		return nil, nil, nil
	case cacheRedis:
		addr := store.GetString(keyRedisAddr)
		if addr == "" {
			addr = defaultRedisAddr
		}
		password := store.GetString(keyRedisPassword)
		if env := os.Getenv(envRedisPassword); env != "" {
			password = env
		}
		c, err := redis.NewCache(ctx, redis.Config{
			Addr:     addr,
			Password: password,
			DB:       store.GetInt(keyRedisDB),
			TTL:      ttl,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case cacheBadger:
		path := store.GetString(keyBadgerPath)
		if path == "" {
			path = filepath.Join(dir, "cache")
		}
		c, err := badger.Open(path, ttl, log)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger cache: %w", err)
		}
		return c, c.Close, nil
	default:
		return nil, nil, domain.NewValidationError(keyCacheBackend, "unknown cache backend "+backend)
	}
}

// sourcePorts registers the backends in query order: local sources, scraper, GitHub.
// Remote backends join only when configured.
func sourcePorts(ctx context.Context, store driven.ConfigStore, docs driven.DocumentStore,
	log *zap.Logger) ([]driven.SourcePort, error) {
	embedder, err := openEmbedder(store)
	if err != nil {
		return nil, err
	}

	var ports []driven.SourcePort
	for _, p := range []*local.Source{
		local.NewMemory(docs, log),
		local.NewKanban(docs, log),
		local.NewWiki(docs, log),
	} {
		if !sourceEnabled(store, p.ID()) {
			continue
		}
		if embedder != nil {
			p.WithEmbedder(embedder)
		}
		ports = append(ports, p)
	}

	if cfg := scraper.ParseConfig(store); cfg.Enabled() && sourceEnabled(store, domain.SourceScraper) {
		client, err := scraper.NewClient(cfg, nil)
		if err != nil {
			return nil, err
		}
		ports = append(ports, scraper.NewSource(client, log))
	}

	if cfg := github.ParseConfig(store); cfg.Token != "" && sourceEnabled(store, domain.SourceGitHub) {
		client, err := github.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		ports = append(ports, github.New(client, cfg, log))
	}

	return ports, nil
}

// openEmbedder builds the embedding service named by semantic.provider. Empty means none.
func openEmbedder(store driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := store.GetString(keyEmbedProvider)
	switch provider {
	case "":
		return nil, nil
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: store.GetString(keyEmbedURL),
			Model:   store.GetString(keyEmbedModel),
		}), nil
	case "openai":
		key := store.GetString(keyEmbedAPIKey)
		if env := os.Getenv(envOpenAIKey); env != "" {
			key = env
		}
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  key,
			BaseURL: store.GetString(keyEmbedURL),
			Model:   store.GetString(keyEmbedModel),
		})
	default:
		return nil, domain.NewValidationError(keyEmbedProvider, "unknown embedding provider "+provider)
	}
}

func sourceEnabled(store driven.ConfigStore, id string) bool {
	return enabled(store, "sources."+id+".enabled")
}

// enabled reads a boolean switch that defaults to on.
func enabled(store driven.ConfigStore, key string) bool {
	if _, ok := store.Get(key); !ok {
		return true
	}
	return store.GetBool(key)
}
