// Package badger provides an embedded, persistent CacheGateway on BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ensure Cache implements the interface.
var _ driven.CacheGateway = (*Cache)(nil)

// DefaultTTL applies when a non-positive TTL is given.
const DefaultTTL = 5 * time.Minute

const cachePrefix = "cache/"

// zapLogger adapts *zap.Logger to badger.Logger.
type zapLogger struct {
	log *zap.SugaredLogger
}

var _ badger.Logger = (*zapLogger)(nil)

func (l *zapLogger) Errorf(msg string, args ...any)   { l.log.Errorf(msg, args...) }
func (l *zapLogger) Warningf(msg string, args ...any) { l.log.Warnf(msg, args...) }
func (l *zapLogger) Infof(msg string, args ...any)    { l.log.Debugf(msg, args...) }
func (l *zapLogger) Debugf(msg string, args ...any)   { l.log.Debugf(msg, args...) }

// Cache stores encoded responses in BadgerDB with a per-entry TTL.
// Hit and miss counters are per process.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
	log    *zap.Logger
}

// Open opens (creating if needed) a cache database in dir.
// An empty dir opens an in-memory database.
func Open(dir string, ttl time.Duration, log *zap.Logger) (*Cache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("module", "badger-cache"))

	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &zapLogger{log: log.Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{db: db, ttl: ttl, log: log}, nil
}

// Get returns a cached response. Expired entries are invisible to Badger reads.
func (c *Cache) Get(_ context.Context, fingerprint string) (*domain.UnifiedResponse, bool, error) {
	var payload []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cachePrefix + fingerprint))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get: %w", err)
	}

	var resp domain.UnifiedResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		c.log.Warn("dropping undecodable cache entry", zap.String("fingerprint", fingerprint), zap.Error(err))
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	return &resp, true, nil
}

// Put stores a response with the configured TTL.
func (c *Cache) Put(_ context.Context, fingerprint string, resp domain.UnifiedResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(cachePrefix+fingerprint), payload).WithTTL(c.ttl))
	})
	if err != nil {
		return fmt.Errorf("badger put: %w", err)
	}
	return nil
}

// Stats counts live entries and reports this process's counters.
func (c *Cache) Stats(_ context.Context) (domain.CacheStats, error) {
	stats := domain.CacheStats{
		Backend: "badger",
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(cachePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			stats.Entries++
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("badger scan: %w", err)
	}
	stats.ComputeHitRate()
	return stats, nil
}

// Clear drops every cached response.
func (c *Cache) Clear(_ context.Context) error {
	if err := c.db.DropPrefix([]byte(cachePrefix)); err != nil {
		return fmt.Errorf("badger drop prefix: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
