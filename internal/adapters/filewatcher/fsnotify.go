// Package filewatcher provides file system monitoring adapters.
// Clean Architecture: Adapter implementing ports.SourceWatcher.
// Watching the FAQ source lets edits trigger re-ingestion without a restart.
package filewatcher

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/ports"
)

// FSNotifyWatcher implements ports.SourceWatcher using fsnotify.
type FSNotifyWatcher struct {
	watcher *fsnotify.Watcher
}

// NewFSNotifyWatcher creates a new source watcher.
func NewFSNotifyWatcher() (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FSNotifyWatcher{watcher: w}, nil
}

// Watch monitors the file at path and emits an event on create or write.
// The parent directory is watched so editors that replace the file (write to
// temp, rename over) are still seen.
func (w *FSNotifyWatcher) Watch(ctx context.Context, path string) (<-chan ports.SourceEvent, error) {
	dir := filepath.Dir(path)
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	target := filepath.Clean(path)
	events := make(chan ports.SourceEvent, 16)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}

				select {
				case events <- ports.SourceEvent{Path: event.Name}:
				case <-ctx.Done():
					return
				}
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}
