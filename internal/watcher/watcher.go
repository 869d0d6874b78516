// Package watcher provides file system watching with debouncing for the
// open document, so external edits surface as a status warning.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the document file for changes and sends notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	docPath   string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}

	// suppressed counts pending notifications to swallow. The app bumps
	// it before saving so its own writes do not read as external edits.
	suppressed atomic.Int64
}

// Config holds watcher configuration options.
type Config struct {
	DocPath     string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(docPath string) Config {
	return Config{
		DocPath:     docPath,
		DebounceDur: 1 * time.Second,
	}
}

// New creates a new document watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		docPath:   cfg.DocPath,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the document's directory. Watching the directory
// rather than the file survives editors that replace via rename.
// Returns a channel that receives a signal when the document changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	dir := filepath.Dir(w.docPath)
	if err := w.fsWatcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// SuppressNext swallows the next change notification. Call before saving
// the document from inside the editor.
func (w *Watcher) SuppressNext() {
	w.suppressed.Add(1)
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.isRelevantEvent(event) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				pending = false
				if w.suppressed.Load() > 0 {
					w.suppressed.Add(-1)
					continue
				}
				// Non-blocking send - drop if channel full
				select {
				case w.onChange <- struct{}{}:
				default:
				}
			}

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			// Log error but continue watching
			// Note: We intentionally don't log here to avoid dependency on a logger.
			// Callers can wrap the watcher if they need error visibility.

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event should trigger a warning. Writes,
// creates, and renames on the document itself count; tmp files from our
// own atomic saves do not.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Base(event.Name) == filepath.Base(w.docPath)
}
