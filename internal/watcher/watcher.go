// Package watcher provides debounced file system watching for project stores.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the time to wait after the last file event before
// triggering a callback. This coalesces a multi-task commit into a single
// notification.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches store paths for changes and invokes a callback with
// debouncing. Directories are watched as a whole; a file is watched through
// its parent directory so that it may be created or replaced later.
type Watcher struct {
	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	delay    time.Duration
	dirs     map[string]bool
	files    map[string]bool
	callback func()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// New creates a Watcher that monitors the given paths for changes.
// The callback is invoked (debounced) whenever a relevant change is detected.
func New(paths []string, callback func(), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		delay:    DefaultDebounce,
		dirs:     map[string]bool{},
		files:    map[string]bool{},
		callback: callback,
	}
	for _, opt := range opts {
		opt(w)
	}

	var watch []string
	for _, p := range paths {
		p = filepath.Clean(p)
		if info, statErr := os.Stat(p); statErr == nil && info.IsDir() {
			w.dirs[p] = true
			watch = append(watch, p)
			continue
		}
		w.files[p] = true
		watch = append(watch, filepath.Dir(p))
	}
	slices.Sort(watch)
	for _, dir := range slices.Compact(watch) {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn callback.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// relevant reports whether an event on name should trigger the callback.
// Dotfiles (lock files, temp files mid-write) never do.
func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	if w.files[name] {
		return true
	}
	return w.dirs[filepath.Dir(name)] || w.dirs[name]
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.callback)
}
