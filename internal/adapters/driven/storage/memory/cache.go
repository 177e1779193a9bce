package memory

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.CacheGateway = (*Cache)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache defaults.
const (
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheMaxEntries = 1000
)

type cacheEntry struct {
	payload  []byte
	expires  time.Time
	inserted uint64
}

// Cache is an in-memory implementation of driven.CacheGateway.
// Responses are stored encoded so callers never share slices with the cache.
// When full, the oldest insertion is evicted.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	seq        uint64
	hits       int64
	misses     int64
	now        func() time.Time
}

// NewCache creates an in-memory cache. Non-positive arguments use the defaults.
func NewCache(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns a cached response.
func (c *Cache) Get(_ context.Context, fingerprint string) (*domain.UnifiedResponse, bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[fingerprint]
	if ok && !c.now().Before(entry.expires) {
		delete(c.entries, fingerprint)
		ok = false
	}
	if !ok {
		c.misses++
		c.mu.Unlock()
		return nil, false, nil
	}
	c.hits++
	c.mu.Unlock()

	var resp domain.UnifiedResponse
	if err := json.Unmarshal(entry.payload, &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

// Put stores a response.
func (c *Cache) Put(_ context.Context, fingerprint string, resp domain.UnifiedResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[fingerprint]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.seq++
	c.entries[fingerprint] = cacheEntry{
		payload:  payload,
		expires:  c.now().Add(c.ttl),
		inserted: c.seq,
	}
	return nil
}

// evictOldest drops expired entries, or the oldest one if none expired.
// Caller must hold the lock.
func (c *Cache) evictOldest() {
	now := c.now()
	var (
		oldestKey string
		oldestSeq uint64
		expired   bool
	)
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			expired = true
			continue
		}
		if oldestKey == "" || e.inserted < oldestSeq {
			oldestKey, oldestSeq = k, e.inserted
		}
	}
	if !expired && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Stats reports the cache size and hit counters.
func (c *Cache) Stats(_ context.Context) (domain.CacheStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := domain.CacheStats{
		Backend: "memory",
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
	stats.ComputeHitRate()
	return stats, nil
}

// Clear removes every entry. Counters are kept.
func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	return nil
}
