package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(body), 0600))
}

func TestNewConfigStore_Path(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_MissingFileIsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("search.default_limit")
	assert.False(t, ok)
	assert.Empty(t, store.Keys(""))
}

func TestNewConfigStore_FlattensTables(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[search]
default_limit = 25
similarity_threshold = 0.75

[ranking]
semantic = 1

[ranking.source_reliability]
wiki = 0.95
github = 0.7

[cache]
backend = "redis"
enabled = true

[sources]
enabled = ["wiki", "memory"]
`)

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 25, store.GetInt("search.default_limit"))
	assert.InDelta(t, 0.75, store.GetFloat("search.similarity_threshold"), 1e-9)
	assert.InDelta(t, 1.0, store.GetFloat("ranking.semantic"), 1e-9, "integers widen")
	assert.InDelta(t, 0.95, store.GetFloat("ranking.source_reliability.wiki"), 1e-9)
	assert.Equal(t, "redis", store.GetString("cache.backend"))
	assert.True(t, store.GetBool("cache.enabled"))
	assert.Equal(t, []string{"wiki", "memory"}, store.GetStringSlice("sources.enabled"))
	assert.Equal(t, []string{
		"ranking.source_reliability.github",
		"ranking.source_reliability.wiki",
	}, store.Keys("ranking.source_reliability."))
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[search\nbroken")

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_MistypedValuesReturnZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("name", "unisearch"))

	assert.Zero(t, store.GetInt("name"))
	assert.Zero(t, store.GetFloat("name"))
	assert.False(t, store.GetBool("name"))
	assert.Nil(t, store.GetStringSlice("name"))
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_SetPersistsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("search.default_limit", 30))
	require.NoError(t, store.Set("ranking.type_importance.code_file", 0.9))
	require.NoError(t, store.Set("cache.backend", "badger"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[search]")
	assert.Contains(t, string(raw), "[ranking.type_importance]")

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 30, reopened.GetInt("search.default_limit"))
	assert.InDelta(t, 0.9, reopened.GetFloat("ranking.type_importance.code_file"), 1e-9)
	assert.Equal(t, "badger", reopened.GetString("cache.backend"))
}

func TestConfigStore_SetConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("cache", "memory"))

	err = store.Set("cache.backend", "redis")

	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("search.max_limit", 100))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_LoadReplacesValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[search]\ndefault_limit = 10\nmax_limit = 50\n")
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	writeConfig(t, dir, "[search]\ndefault_limit = 15\n")
	require.NoError(t, store.Load())

	assert.Equal(t, 15, store.GetInt("search.default_limit"))
	_, ok := store.Get("search.max_limit")
	assert.False(t, ok, "removed keys disappear on reload")
}
