// Package redis provides a Redis-backed CacheGateway for sharing cached
// responses between unisearch processes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ensure Cache implements the interface.
var _ driven.CacheGateway = (*Cache)(nil)

const (
	// DefaultNamespace prefixes every key the cache writes.
	DefaultNamespace = "unisearch"
	// DefaultTTL applies when Config.TTL is zero.
	DefaultTTL = 5 * time.Minute

	scanBatch = 500
)

// Config holds Redis connection and cache settings.
type Config struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
	TTL       time.Duration
}

// Cache stores encoded responses under <namespace>:cache:<fingerprint> with a TTL.
// Hit and miss counters live in a hash so every process sees the same totals.
type Cache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	log       *zap.Logger
}

// NewCache connects to Redis and verifies the connection with PING.
func NewCache(ctx context.Context, cfg Config, log *zap.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewCacheWithClient(client, cfg, log), nil
}

// NewCacheWithClient wraps an existing client.
func NewCacheWithClient(client *redis.Client, cfg Config, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Cache{
		client:    client,
		namespace: cfg.Namespace,
		ttl:       cfg.TTL,
		log:       log.With(zap.String("module", "redis-cache")),
	}
}

func (c *Cache) key(fingerprint string) string {
	return c.namespace + ":cache:" + fingerprint
}

func (c *Cache) statsKey() string {
	return c.namespace + ":cache-stats"
}

// Get returns a cached response.
func (c *Cache) Get(ctx context.Context, fingerprint string) (*domain.UnifiedResponse, bool, error) {
	data, err := c.client.Get(ctx, c.key(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.count(ctx, "misses")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var resp domain.UnifiedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.log.Warn("dropping undecodable cache entry", zap.String("fingerprint", fingerprint), zap.Error(err))
		c.client.Del(ctx, c.key(fingerprint))
		c.count(ctx, "misses")
		return nil, false, nil
	}
	c.count(ctx, "hits")
	return &resp, true, nil
}

func (c *Cache) count(ctx context.Context, field string) {
	if err := c.client.HIncrBy(ctx, c.statsKey(), field, 1).Err(); err != nil {
		c.log.Debug("cache counter update failed", zap.String("field", field), zap.Error(err))
	}
}

// Put stores a response with the configured TTL.
func (c *Cache) Put(ctx context.Context, fingerprint string, resp domain.UnifiedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if err := c.client.Set(ctx, c.key(fingerprint), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Stats counts live entries with SCAN and reads the shared counters.
func (c *Cache) Stats(ctx context.Context) (domain.CacheStats, error) {
	stats := domain.CacheStats{Backend: "redis"}

	err := c.scan(ctx, func(keys []string) error {
		stats.Entries += len(keys)
		return nil
	})
	if err != nil {
		return stats, err
	}

	counters, err := c.client.HGetAll(ctx, c.statsKey()).Result()
	if err != nil {
		return stats, fmt.Errorf("redis hgetall: %w", err)
	}
	fmt.Sscan(counters["hits"], &stats.Hits)     //nolint:errcheck
	fmt.Sscan(counters["misses"], &stats.Misses) //nolint:errcheck
	stats.ComputeHitRate()
	return stats, nil
}

// Clear unlinks every cached response. Counters are kept.
func (c *Cache) Clear(ctx context.Context) error {
	return c.scan(ctx, func(keys []string) error {
		if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis unlink: %w", err)
		}
		return nil
	})
}

func (c *Cache) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.key("*"), scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
