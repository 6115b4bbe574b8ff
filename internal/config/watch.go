package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of events an editor save produces
// into a single reload.
const debounceWindow = 200 * time.Millisecond

// Watch monitors path and calls onChange with the newly loaded Config each
// time the file is rewritten. It runs until ctx is cancelled.
//
// If a reload fails (e.g., invalid YAML or a rejected tunable), the error
// is logged and the previous config remains active — Watch does not call
// onChange.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	// Stopped timer; reset on every relevant event so a save burst fires
	// one reload after debounceWindow of quiet.
	debounce := time.NewTimer(debounceWindow)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often write via rename (atomic save), so catch
			// fsnotify.Create alongside plain writes.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce.Reset(debounceWindow)
			}

		case <-debounce.C:
			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed — keeping previous config",
					"path", path, "err", err)
				continue
			}
			slog.Info("config: reloaded", "path", path)
			onChange(cfg)

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
