package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStoreFrom(map[string]any{
		"search.default_limit":        int64(25),
		"search.similarity_threshold": 0.75,
		"ranking.semantic":            1,
		"cache.backend":               "redis",
		"analytics.enabled":           true,
		"sources.enabled":             []any{"wiki", 3, "memory"},
	})

	assert.Equal(t, 25, store.GetInt("search.default_limit"))
	assert.InDelta(t, 0.75, store.GetFloat("search.similarity_threshold"), 1e-9)
	assert.InDelta(t, 1.0, store.GetFloat("ranking.semantic"), 1e-9)
	assert.Equal(t, "redis", store.GetString("cache.backend"))
	assert.True(t, store.GetBool("analytics.enabled"))
	assert.Equal(t, []string{"wiki", "memory"}, store.GetStringSlice("sources.enabled"))
}

func TestConfigStore_MissingAndMistyped(t *testing.T) {
	store := NewConfigStoreFrom(map[string]any{"name": "unisearch"})

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("name"))
	assert.Zero(t, store.GetFloat("name"))
	assert.False(t, store.GetBool("name"))
	assert.Nil(t, store.GetStringSlice("name"))
}

func TestConfigStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"a": 1}
	store := NewConfigStoreFrom(seed)
	seed["a"] = 2

	assert.Equal(t, 1, store.GetInt("a"))
}

func TestConfigStore_Keys(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("ranking.source_reliability.wiki", 0.9))
	require.NoError(t, store.Set("ranking.source_reliability.github", 0.8))
	require.NoError(t, store.Set("ranking.semantic", 0.3))

	assert.Equal(t, []string{
		"ranking.source_reliability.github",
		"ranking.source_reliability.wiki",
	}, store.Keys("ranking.source_reliability."))
	assert.Len(t, store.Keys(""), 3)
}

func TestConfigStore_PersistenceIsNoOp(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "v"))

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("key.%d", i), i)
		}(i)
		go func(i int) {
			defer wg.Done()
			_ = store.GetInt(fmt.Sprintf("key.%d", i))
			_ = store.Keys("key.")
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys("key."), 50)
}
