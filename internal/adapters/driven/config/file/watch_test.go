package file

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

func TestConfigStore_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[search]\ndefault_limit = 10\n")
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan int, 4)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, zaptest.NewLogger(t), 20*time.Millisecond, func(cs driven.ConfigStore) {
			reloaded <- cs.GetInt("search.default_limit")
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "[search]\ndefault_limit = 42\n")

	select {
	case v := <-reloaded:
		assert.Equal(t, 42, v)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestConfigStore_WatchKeepsValuesOnParseError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[search]\ndefault_limit = 10\n")
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	called := make(chan struct{}, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(store.Path(), []byte("[search\nbroken"), 0600)
	}()

	err = store.Watch(ctx, nil, 20*time.Millisecond, func(driven.ConfigStore) {
		called <- struct{}{}
	})

	require.NoError(t, err)
	assert.Empty(t, called)
	assert.Equal(t, 10, store.GetInt("search.default_limit"))
}

func TestConfigStore_RelevantIgnoresOtherFiles(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.True(t, store.relevant(fsnotify.Event{Name: store.Path(), Op: fsnotify.Write}))
	assert.True(t, store.relevant(fsnotify.Event{Name: store.Path(), Op: fsnotify.Create}))
	assert.False(t, store.relevant(fsnotify.Event{Name: store.Path() + ".swp", Op: fsnotify.Write}))
	assert.False(t, store.relevant(fsnotify.Event{Name: store.Path(), Op: fsnotify.Chmod}))
}
