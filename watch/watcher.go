// Package watch bridges OS filesystem change notifications into asset
// reload calls.
//
// A Watcher owns one recursive OS watch and pumps its notifications into
// an unbounded single-producer/single-consumer queue, so the OS-side
// producer never blocks on a slow consumer. The Bridge is the sole
// consumer: it drains the queue once per host tick and invokes the host's
// reload hook for modified paths.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/pithecene-io/webasset/log"
)

// EventKind classifies a filesystem change.
type EventKind int

// Event kinds. Only KindModify triggers reloads; the other kinds are
// carried for hosts that want to extend draining.
const (
	KindOther EventKind = iota
	KindCreate
	KindModify
	KindRemove
)

// String returns the kind name for logging.
func (k EventKind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindModify:
		return "modify"
	case KindRemove:
		return "remove"
	default:
		return "other"
	}
}

// Event is one filesystem change notification.
type Event struct {
	Kind  EventKind
	Paths []string
}

// ErrDisconnected reports that the producer side of the event queue is
// gone. There is no path to repair a dead watch session; the consumer
// treats this as fatal.
var ErrDisconnected = errors.New("watch event queue disconnected")

// PathWatchError reports a failed OS watch registration.
type PathWatchError struct {
	Path string
	Err  error
}

func (e *PathWatchError) Error() string {
	return fmt.Sprintf("watch %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *PathWatchError) Unwrap() error {
	return e.Err
}

// Watcher owns the OS watch handle and the consuming end of its event
// queue. Create one per watch session; Close tears the session down.
type Watcher struct {
	fs  *fsnotify.Watcher
	out chan Event
	log *log.Logger
}

// NewWatcher creates a watcher and starts its pump goroutine.
func NewWatcher(logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Nop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}
	w := &Watcher{
		fs:  fsw,
		out: make(chan Event),
		log: logger,
	}
	go w.pump()
	return w, nil
}

// Watch registers a recursive watch rooted at path. The OS primitive is
// per-directory, so every existing subdirectory is registered up front
// and directories created later are added by the pump.
func (w *Watcher) Watch(path string) error {
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.fs.Add(p)
	})
	if err != nil {
		return &PathWatchError{Path: path, Err: err}
	}
	return nil
}

// TryRecv returns the next queued event without blocking. ok is false
// when the queue is currently empty. ErrDisconnected is returned once the
// producer has shut down and the queue is fully drained.
func (w *Watcher) TryRecv() (Event, bool, error) {
	select {
	case ev, open := <-w.out:
		if !open {
			return Event{}, false, ErrDisconnected
		}
		return ev, true, nil
	default:
		return Event{}, false, nil
	}
}

// Close tears down the watch session. Pending events are discarded.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// pump moves OS notifications into the unbounded queue. It is the single
// producer for out and closes it when the OS side shuts down.
func (w *Watcher) pump() {
	events := w.fs.Events
	errs := w.fs.Errors
	var queue []Event

	for {
		var out chan Event
		var head Event
		if len(queue) > 0 {
			out = w.out
			head = queue[0]
		}

		select {
		case ev, open := <-events:
			if !open {
				// Producer shut down. Remaining queued events are
				// discarded; the session is over either way.
				close(w.out)
				return
			}
			queue = append(queue, w.convert(ev))
		case err, open := <-errs:
			if !open {
				errs = nil
				continue
			}
			if err != nil {
				w.log.Warn("watch error", map[string]any{"error": err.Error()})
			}
		case out <- head:
			queue = queue[1:]
		}
	}
}

// convert maps an OS notification to an Event, growing the recursive
// watch when a new directory appears.
func (w *Watcher) convert(ev fsnotify.Event) Event {
	kind := KindOther
	switch {
	case ev.Op.Has(fsnotify.Write):
		kind = KindModify
	case ev.Op.Has(fsnotify.Create):
		kind = KindCreate
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.fs.Add(ev.Name); err != nil {
				w.log.Warn("watch new directory", map[string]any{"path": ev.Name, "error": err.Error()})
			}
		}
	case ev.Op.Has(fsnotify.Remove):
		kind = KindRemove
	}
	return Event{Kind: kind, Paths: []string{ev.Name}}
}
