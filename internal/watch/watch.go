// Package watch reports changes to a single file.
//
// The parent directory is watched rather than the file itself, so editors
// that save by writing a temp file and renaming it over the original are
// still seen. Bursts of events are collapsed into one notification.
package watch

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches one file.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *log.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// WithLogger sets the logger for watcher errors.
func WithLogger(l *log.Logger) Option { return func(w *Watcher) { w.log = l } }

// New creates a watcher for path.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{path: filepath.Clean(path), debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = log.New(io.Discard)
	}
	return w
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Watch blocks until ctx is done, calling onChange after each burst of
// writes to the file. onChange runs on the calling goroutine, so calls
// never overlap. Watch returns ctx.Err() on cancellation.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	name := filepath.Base(w.path)
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.log.Debug("watching", "path", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			w.log.Debug("file changed", "path", w.path)
			onChange()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "err", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
