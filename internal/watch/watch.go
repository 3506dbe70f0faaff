// Package watch re-runs a driver pass whenever one of the analyzed IR
// files changes, implementing the --watch flag. A dedicated goroutine
// drains fsnotify's Events/Errors channels into buffered channels the
// caller can select on alongside its own shutdown signal.
package watch

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies on writes to any of a fixed set of files. Editors
// that save-by-rename (write a temp file, then rename over the
// original) don't emit a Write event on the original path, so Watcher
// also watches each file's parent directory and filters directory
// events back down to the files it was asked to track.
type Watcher struct {
	w       *fsnotify.Watcher
	files   map[string]bool
	Changed chan string
	Errors  chan error
}

// New creates a Watcher tracking paths. It fails if any parent
// directory cannot be watched.
func New(paths []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := &Watcher{
		w:       w,
		files:   make(map[string]bool, len(paths)),
		Changed: make(chan string, 16),
		Errors:  make(chan error, 1),
	}

	dirs := make(map[string]bool)

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}

		watched.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()

			return nil, err
		}
	}

	go watched.loop()

	return watched, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}

			if !w.files[ev.Name] {
				continue
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.Changed <- ev.Name
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}

			w.Errors <- err
		}
	}
}

// Close stops the watcher and releases its fsnotify handle.
func (w *Watcher) Close() error { return w.w.Close() }
