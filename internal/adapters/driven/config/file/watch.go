package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// DefaultReloadDebounce collapses bursts of editor writes into one reload.
const DefaultReloadDebounce = 500 * time.Millisecond

// Watch reloads the file whenever it changes on disk and passes the store to onChange.
// It blocks until ctx is cancelled. Parse failures are logged and the previous
// values stay in effect.
func (s *ConfigStore) Watch(ctx context.Context, log *zap.Logger, debounce time.Duration,
	onChange func(driven.ConfigStore)) error {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Debug("watching config", zap.String("path", s.filePath))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if s.relevant(event) {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", zap.Error(err))

		case <-timer.C:
			if err := s.Load(); err != nil {
				log.Error("config reload failed", zap.String("path", s.filePath), zap.Error(err))
				continue
			}
			log.Info("config reloaded", zap.String("path", s.filePath))
			if onChange != nil {
				onChange(s)
			}

		case <-ctx.Done():
			return nil
		}
	}
}

func (s *ConfigStore) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(s.filePath) {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
