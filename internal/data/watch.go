package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

var errWatcherClosed = errors.New("watcher closed")

// WaitForFile blocks until a file exists at path or ctx is done. It returns
// immediately if the file is already present. The parent directory must exist.
func WaitForFile(ctx context.Context, path string) error {
	return watchFile(ctx, path, true)
}

// PreloadWhenAvailable waits for the dataset file of l to appear and then
// loads it. A failed load is retried on the next change to the file.
// The file should be moved into place complete; a file still being written
// when its create event fires may be loaded partially.
func PreloadWhenAvailable(ctx context.Context, l *DatasetLookup) error {
	present := false
	for {
		if err := watchFile(ctx, l.path, !present); err != nil {
			return err
		}
		err := l.Preload()
		if err == nil {
			return nil
		}
		slog.Warn("dataset preload failed, waiting for next change", "path", l.path, "error", err)
		_, statErr := os.Stat(l.path)
		present = statErr == nil
	}
}

// watchFile returns on the next create, write or rename of path. With
// existing set it also returns at once if path is already there.
func watchFile(ctx context.Context, path string, existing bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	// checked after Add so a file created in between is not missed
	if existing {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return errWatcherClosed
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if _, err := os.Stat(path); err == nil {
				slog.Debug("dataset file changed", "path", path, "op", event.Op.String())
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errWatcherClosed
			}
			slog.Warn("dataset watcher error", "path", path, "error", err)
		}
	}
}
