package dataset

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

const watchedOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watch invalidates the cached entry for path whenever the file changes on
// disk. The parent directory is watched so that editors that replace the
// file are also seen. Watching stops when ctx is done.
func (c *Cache) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || event.Op&watchedOps == 0 {
					continue
				}
				c.log.WithField("event", event.Op.String()).Info("Dataset source changed")
				c.Invalidate(path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.log.WithError(err).Warn("Dataset watcher error")
			}
		}
	}()

	return nil
}
