package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called with the freshly loaded configuration after the
// watched file changes and passes validation.
type ReloadFunc func(*Config)

// Watcher watches a configuration file and invokes a callback on change.
//
// Invalid intermediate states (partial writes, syntax errors, failed
// validation) are skipped; the previous configuration stays in effect.
type Watcher struct {
	path     string
	onReload ReloadFunc
	onError  func(error)

	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher creates a configuration file watcher.
// onError may be nil; load errors are then silently skipped.
func NewWatcher(path string, onReload ReloadFunc, onError func(error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory rather than the file itself: editors and
	// config-map mounts replace the file, which drops an inode watch.
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w := &Watcher{
		path:     path,
		onReload: onReload,
		onError:  onError,
		watcher:  fsw,
		done:     make(chan struct{}),
	}

	go w.run()
	return w, nil
}

// run processes file system events until Stop is called.
func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := LoadConfig(w.path)
			if err != nil {
				if w.onError != nil {
					w.onError(err)
				}
				continue
			}
			w.onReload(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// Stop stops watching and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
