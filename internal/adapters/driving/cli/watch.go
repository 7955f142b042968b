package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/versesearch/internal/logger"
)

// watchFile calls onChange after path is written or replaced, at most once
// per debounce window. It watches the parent directory so editors that save
// through a rename are seen. Blocks until ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func(context.Context)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("File event: %s %s", event.Op, event.Name)
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			logger.Info("Change detected: %s", abs)
			onChange(ctx)
		}
	}
}
