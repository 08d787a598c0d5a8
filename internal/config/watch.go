package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the write bursts editors produce on save.
const watchDebounce = 300 * time.Millisecond

// Watch reloads cfg from path whenever the file changes, until ctx is
// cancelled. onReload, if non-nil, runs after each successful reload.
// Watching the directory rather than the file survives rename-based
// saves (vim, kubernetes configmap updates).
func Watch(ctx context.Context, path string, cfg *Config, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		lastHash := cfg.Hash()

		reload := func() {
			next, err := Load(path)
			if err != nil {
				slog.Warn("config reload failed", "path", path, "error", err)
				return
			}
			h := next.Hash()
			if h == lastHash {
				return
			}
			lastHash = h
			cfg.ReplaceFrom(next)
			slog.Info("config reloaded", "path", path)
			if onReload != nil {
				onReload(cfg)
			}
		}

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "error", err)
			}
		}
	}()

	return nil
}
