// Package watch turns filesystem changes in the cache directory into note
// change callbacks, so edits made outside the HTTP API are reported too.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/notestore/internal/models"
	"github.com/starford/notestore/internal/sse"
	"github.com/starford/notestore/internal/storage"
)

// EventCallback is called for every observed note change.
// kind is one of sse.KindCreated, sse.KindUpdated, sse.KindDeleted.
type EventCallback func(kind, name string)

// Watch observes dir (non-recursively) until ctx is cancelled.
//
// The store replaces files by rename, so fsnotify reports both creations and
// updates as Create on the final path. Watch tells them apart by remembering
// which names are currently present.
func Watch(ctx context.Context, dir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	present, err := scan(dir)
	if err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dir), slog.Int("notes", len(present)))

	emit := func(kind, name string) {
		logger.Debug("watcher: change", slog.String("name", name), slog.String("kind", kind))
		if cb != nil {
			cb(kind, name)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, ok := noteName(ev.Name)
			if !ok {
				continue
			}

			switch {
			case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
				// a Create can be stale by the time it is read
				if _, statErr := os.Stat(ev.Name); statErr != nil {
					continue
				}
				if _, seen := present[name]; seen {
					emit(sse.KindUpdated, name)
				} else {
					present[name] = struct{}{}
					emit(sse.KindCreated, name)
				}

			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				if _, seen := present[name]; !seen {
					continue
				}
				delete(present, name)
				emit(sse.KindDeleted, name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func noteName(path string) (string, bool) {
	name, ok := storage.NoteName(filepath.Base(path))
	if !ok || models.ValidateName(name) != nil {
		return "", false
	}
	return name, true
}

func scan(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if name, ok := noteName(e.Name()); ok {
			present[name] = struct{}{}
		}
	}
	return present, nil
}
