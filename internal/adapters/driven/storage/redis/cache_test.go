package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// newTestCache connects to the server named by UNISEARCH_TEST_REDIS_ADDR.
// Each test gets its own namespace so runs do not interfere.
func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	addr := os.Getenv("UNISEARCH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("UNISEARCH_TEST_REDIS_ADDR not set")
	}

	cache, err := NewCache(context.Background(), Config{
		Addr:      addr,
		Namespace: "unisearch-test-" + uuid.NewString(),
		TTL:       ttl,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		_ = cache.Clear(ctx)
		cache.client.Del(ctx, cache.statsKey())
		_ = cache.Close()
	})
	return cache
}

func response(id string) domain.UnifiedResponse {
	return domain.UnifiedResponse{
		RequestID:    id,
		Results:      []domain.SearchResult{{ID: "r1", Title: "Deploy", Metadata: domain.ResultMetadata{Source: "wiki"}}},
		TotalCount:   1,
		Aggregations: domain.EmptyAggregations(),
		Suggestions:  []string{},
	}
}

func TestNewCacheWithClient_Defaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	c := NewCacheWithClient(client, Config{}, nil)

	assert.Equal(t, DefaultNamespace, c.namespace)
	assert.Equal(t, DefaultTTL, c.ttl)
	assert.Equal(t, "unisearch:cache:search:abc", c.key("search:abc"))
}

func TestNewCache_ConnectionFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewCache(ctx, Config{Addr: "127.0.0.1:1"}, nil)

	assert.Error(t, err)
}

func TestCache_PutGetStatsClear(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "search:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "search:a", response("req-1")))
	got, ok, err := c.Get(ctx, "search:a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "Deploy", got.Results[0].Title)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "redis", stats.Backend)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)

	require.NoError(t, c.Clear(ctx))
	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
}

func TestCache_EntriesExpire(t *testing.T) {
	c := newTestCache(t, time.Second)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "search:a", response("req-1")))

	ttl, err := c.client.PTTL(ctx, c.key("search:a")).Result()

	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Second)
}

func TestCache_UndecodableEntryIsAMiss(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.client.Set(ctx, c.key("search:bad"), "{not json", time.Minute).Err())

	_, ok, err := c.Get(ctx, "search:bad")

	require.NoError(t, err)
	assert.False(t, ok)
	exists, err := c.client.Exists(ctx, c.key("search:bad")).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
