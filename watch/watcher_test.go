package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pithecene-io/webasset/iox"
)

// recvWithin polls TryRecv until an event arrives or the deadline passes.
func recvWithin(t *testing.T, w *Watcher, d time.Duration) (Event, bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		ev, ok, err := w.TryRecv()
		if err != nil {
			t.Fatalf("try recv: %v", err)
		}
		if ok {
			return ev, true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return Event{}, false
}

func TestWatcher_ModifyEvent(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "hero.png")
	if err := os.WriteFile(file, []byte("v1"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(iox.CloseFunc(w))

	if err := w.Watch(root); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := os.WriteFile(file, []byte("v2"), 0o644); err != nil {
		t.Fatalf("modify file: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		ev, ok := recvWithin(t, w, time.Until(deadline))
		if !ok {
			break
		}
		if ev.Kind == KindModify && len(ev.Paths) == 1 && ev.Paths[0] == file {
			return
		}
	}
	t.Fatal("no modify event observed for changed file")
}

func TestWatcher_TryRecvEmptyDoesNotBlock(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(iox.CloseFunc(w))

	start := time.Now()
	_, ok, err := w.TryRecv()
	if err != nil {
		t.Fatalf("try recv: %v", err)
	}
	if ok {
		t.Error("expected empty queue")
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("TryRecv blocked")
	}
}

func TestWatcher_MissingRootFails(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(iox.CloseFunc(w))

	err = w.Watch(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	var pw *PathWatchError
	if !errors.As(err, &pw) {
		t.Errorf("expected *PathWatchError, got %T", err)
	}
}

func TestWatcher_CloseDisconnects(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, _, err := w.TryRecv()
		if errors.Is(err, ErrDisconnected) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected ErrDisconnected after close")
}

func TestWatcher_RecursiveSubdirectories(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sprites")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file := filepath.Join(sub, "hero.png")
	if err := os.WriteFile(file, []byte("v1"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(iox.CloseFunc(w))

	if err := w.Watch(root); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := os.WriteFile(file, []byte("v2"), 0o644); err != nil {
		t.Fatalf("modify: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		ev, ok := recvWithin(t, w, time.Until(deadline))
		if !ok {
			break
		}
		if ev.Kind == KindModify && ev.Paths[0] == file {
			return
		}
	}
	t.Fatal("no modify event observed under subdirectory")
}
