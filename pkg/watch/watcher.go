// Package watch re-analyzes logs as the drawing program appends to
// them. Each change triggers a fresh full pass; verdicts are whole-log
// properties, so there is nothing incremental to keep.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors log files and triggers re-analysis on change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	targets  map[string]*target
	mu       sync.RWMutex
	debounce time.Duration

	// OnChange runs after a watched log settles. Its error goes to
	// OnError rather than stopping the loop.
	OnChange func(path string) error
	OnError  func(path string, err error)
}

type target struct {
	path    string
	modTime time.Time
	size    int64
	busy    bool
}

// NewWatcher creates a watcher. A zero debounce uses 500ms.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		watcher:  fsWatcher,
		targets:  make(map[string]*target),
		debounce: debounce,
	}, nil
}

// Watch starts watching one log file.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("failed to stat log: %w", err)
	}

	w.mu.Lock()
	w.targets[absPath] = &target{
		path:    absPath,
		modTime: stat.ModTime(),
		size:    stat.Size(),
	}
	w.mu.Unlock()

	// Watch the directory containing the file; this also catches logs
	// rewritten by rename.
	dir := filepath.Dir(absPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	return nil
}

// Run starts the watch loop. Blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	debounceTimers := make(map[string]*time.Timer)
	var timerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			absPath, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			w.mu.RLock()
			tgt, watched := w.targets[absPath]
			w.mu.RUnlock()
			if !watched {
				continue
			}

			// Debounce rapid appends
			timerMu.Lock()
			if timer, exists := debounceTimers[absPath]; exists {
				timer.Stop()
			}
			debounceTimers[absPath] = time.AfterFunc(w.debounce, func() {
				w.handleChange(absPath, tgt)
			})
			timerMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError("", err)
			}
		}
	}
}

func (w *Watcher) handleChange(path string, tgt *target) {
	w.mu.Lock()
	if tgt.busy {
		w.mu.Unlock()
		return
	}
	tgt.busy = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		tgt.busy = false
		w.mu.Unlock()
	}()

	stat, err := os.Stat(path)
	if err != nil {
		if w.OnError != nil {
			w.OnError(path, err)
		}
		return
	}

	// The event may have been a touch with no new bytes
	if stat.ModTime().Equal(tgt.modTime) && stat.Size() == tgt.size {
		return
	}

	w.mu.Lock()
	tgt.modTime = stat.ModTime()
	tgt.size = stat.Size()
	w.mu.Unlock()

	if w.OnChange != nil {
		if err := w.OnChange(path); err != nil {
			if w.OnError != nil {
				w.OnError(path, err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
