// Package watcher hot-reloads the keybinding file: it turns filesystem
// notifications into debounced reloads that swap the active table.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind classifies a change to the watched file.
type Kind int

const (
	KindOther Kind = iota
	KindCreated
	KindModified
	KindRemoved
)

func (k Kind) String() string {
	switch k {
	case KindCreated:
		return "created"
	case KindModified:
		return "modified"
	case KindRemoved:
		return "removed"
	default:
		return "other"
	}
}

// Event is a change notification for the watched file.
type Event struct {
	Path string
	Kind Kind
	Time time.Time
}

// Notifier is a source of change notifications.
type Notifier interface {
	Events() <-chan Event
	Errors() <-chan error
}

// SetupError reports that a watch could not be established.
type SetupError struct {
	Path string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("watch %s: %v", e.Path, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Classify maps an fsnotify operation to a Kind. Write wins over the other
// bits fsnotify may coalesce into one event.
func Classify(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Write):
		return KindModified
	case op.Has(fsnotify.Create):
		return KindCreated
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return KindRemoved
	default:
		return KindOther
	}
}

// Watcher reports changes to one file. It watches the parent directory so
// the watch survives editors that save by writing a new file and renaming
// it over the old one.
type Watcher struct {
	fsw  *fsnotify.Watcher
	path string

	events chan Event
	errors chan error

	closeOnce sync.Once
	closeCh   chan struct{}
	closedWg  sync.WaitGroup
}

// New starts watching path. Failures are returned as *SetupError.
func New(path string) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &SetupError{Path: path, Err: err}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &SetupError{Path: absPath, Err: err}
	}
	dir := filepath.Dir(absPath)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, &SetupError{Path: absPath, Err: err}
	}

	w := &Watcher{
		fsw:     fsw,
		path:    absPath,
		events:  make(chan Event, 16),
		errors:  make(chan error, 4),
		closeCh: make(chan struct{}),
	}
	w.closedWg.Add(1)
	go w.processLoop()

	slog.Debug("[watcher] watching", "path", absPath, "dir", dir)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Events implements Notifier.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors implements Notifier.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and closes both channels.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
		w.closedWg.Wait()
		close(w.events)
		close(w.errors)
	})
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			event := Event{Path: w.path, Kind: Classify(ev.Op), Time: time.Now()}
			slog.Debug("[watcher] change", "path", event.Path, "kind", event.Kind, "op", ev.Op.String())
			select {
			case w.events <- event:
			case <-w.closeCh:
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				slog.Warn("[watcher] dropping watch error", "error", err)
			}
		}
	}
}
