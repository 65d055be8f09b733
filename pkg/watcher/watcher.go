// Package watcher reloads model files when they change on disk.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is invoked with the changed file path once writes settle.
type ReloadFunc func(path string)

// Watcher debounces filesystem events on registered model files.
// Editors often emit several writes per save; only the last one within
// the debounce window triggers a reload.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	reloads map[string]ReloadFunc
	timers  map[string]*time.Timer
	done    chan struct{}
}

// New creates a watcher with the given settle time.
func New(debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		fs:       fs,
		debounce: debounce,
		reloads:  make(map[string]ReloadFunc),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Watch registers a model file for reload on change.
func (w *Watcher) Watch(path string, reload ReloadFunc) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	// Watch the directory so saves that replace the file are still seen.
	if err := w.fs.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}

	w.mu.Lock()
	w.reloads[abs] = reload
	w.mu.Unlock()
	return nil
}

// Start begins dispatching reload callbacks. Errors from the underlying
// watcher are reported through errFn, which may be nil.
func (w *Watcher) Start(errFn func(error)) {
	go func() {
		for {
			select {
			case event, ok := <-w.fs.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					w.fileChanged(event.Name)
				}

			case err, ok := <-w.fs.Errors:
				if !ok {
					return
				}
				if errFn != nil {
					errFn(err)
				}

			case <-w.done:
				return
			}
		}
	}()
}

func (w *Watcher) fileChanged(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	reload, ok := w.reloads[path]
	if !ok {
		return
	}

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		reload(path)
	})
}

// Close stops the watcher and cancels pending reloads.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()

	close(w.done)
	return w.fs.Close()
}
