package views

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 500 * time.Millisecond

// Watch reloads the registry whenever its file changes, until ctx is done.
// Editors tend to emit bursts of write events, so reloads are debounced.
// onReload, when non-nil, runs after every successful reload.
func (r *Registry) Watch(ctx context.Context, logger *slog.Logger, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// watch the directory: editors replace files via rename, which drops
	// a watch on the file itself
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		return err
	}
	go func() {
		defer watcher.Close()
		var timer *time.Timer
		fire := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(r.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			case <-fire:
				if err := r.Reload(); err != nil {
					logger.Warn("view definitions reload failed, keeping previous", "path", r.path, "err", err)
					continue
				}
				logger.Info("view definitions reloaded", "path", r.path)
				if onReload != nil {
					onReload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("view watcher", "err", err)
			}
		}
	}()
	return nil
}
