// Package watch re-runs icon generation when the source image or the config
// file changes.
package watch

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a set of files and invokes a callback when any of them
// changes. Rapid successive events are coalesced into one callback, and
// callbacks never run concurrently.
//
// Parent directories are watched rather than the files themselves so that
// editors that save by renaming a temp file over the original are seen, and
// so that a source that does not exist yet is picked up once created.
type Watcher struct {
	files    map[string]bool
	onChange func()
	debounce time.Duration
	watcher  *fsnotify.Watcher
	ready    chan struct{}
	done     chan struct{}
	once     sync.Once
	running  sync.Mutex
}

// New creates a Watcher for files. onChange runs after events have been
// quiet for the debounce duration.
func New(files []string, debounce time.Duration, onChange func()) *Watcher {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		if f == "" {
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		set[filepath.Clean(f)] = true
	}
	return &Watcher{
		files:    set,
		onChange: onChange,
		debounce: debounce,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Ready is closed once Start has registered its watches.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Start begins watching. It blocks until Stop is called or a fatal error
// occurs.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw

	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if _, err := os.Stat(d); err != nil {
			log.Printf("warning: not watching %s: %v", d, err)
			continue
		}
		if err := fsw.Add(d); err != nil {
			log.Printf("warning: failed to watch %s: %v", d, err)
		}
	}
	close(w.ready)

	var timer *time.Timer
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.fire)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return fsw.Close()
		}
	}
}

// fire runs onChange, waiting for any previous run to finish first.
func (w *Watcher) fire() {
	w.running.Lock()
	defer w.running.Unlock()
	w.onChange()
}

// Stop signals the watcher to stop monitoring files. It is safe to call more
// than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
}
