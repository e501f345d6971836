package watch

import (
	"path/filepath"
	"testing"

	"github.com/pithecene-io/webasset/metrics"
)

// stubSource is an EventSource double fed from a slice.
type stubSource struct {
	events       []Event
	disconnected bool
}

func (s *stubSource) TryRecv() (Event, bool, error) {
	if len(s.events) == 0 {
		if s.disconnected {
			return Event{}, false, ErrDisconnected
		}
		return Event{}, false, nil
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true, nil
}

func (s *stubSource) push(kind EventKind, paths ...string) {
	s.events = append(s.events, Event{Kind: kind, Paths: paths})
}

func collectReloads(reloads *[]string) ReloadFunc {
	return func(rel string) { *reloads = append(*reloads, rel) }
}

func TestDrain_DedupWithinOneCycle(t *testing.T) {
	root := filepath.Join("/", "assets")
	changed := filepath.Join(root, "hero.png")

	src := &stubSource{}
	src.push(KindModify, changed)
	src.push(KindModify, changed)

	var reloads []string
	b := NewBridge(src, root, collectReloads(&reloads), BridgeOptions{})
	b.Drain()

	if len(reloads) != 1 {
		t.Fatalf("reloads = %v, want exactly one", reloads)
	}
	if reloads[0] != "hero.png" {
		t.Errorf("reload path = %q, want hero.png", reloads[0])
	}
}

func TestDrain_SeparateCyclesReloadAgain(t *testing.T) {
	root := filepath.Join("/", "assets")
	changed := filepath.Join(root, "hero.png")

	src := &stubSource{}
	var reloads []string
	b := NewBridge(src, root, collectReloads(&reloads), BridgeOptions{})

	src.push(KindModify, changed)
	b.Drain()
	src.push(KindModify, changed)
	b.Drain()

	if len(reloads) != 2 {
		t.Fatalf("reloads = %v, want two (one per drain cycle)", reloads)
	}
}

func TestDrain_ModifyOnly(t *testing.T) {
	root := filepath.Join("/", "assets")

	src := &stubSource{}
	src.push(KindCreate, filepath.Join(root, "new.png"))
	src.push(KindRemove, filepath.Join(root, "old.png"))
	src.push(KindOther, filepath.Join(root, "meta.png"))
	src.push(KindModify, filepath.Join(root, "hero.png"))

	var reloads []string
	col := metrics.NewCollector("https")
	b := NewBridge(src, root, collectReloads(&reloads), BridgeOptions{Metrics: col})
	b.Drain()

	if len(reloads) != 1 || reloads[0] != "hero.png" {
		t.Fatalf("reloads = %v, want only hero.png", reloads)
	}
	s := col.Snapshot()
	if s.EventsIgnored != 3 {
		t.Errorf("EventsIgnored = %d, want 3", s.EventsIgnored)
	}
	if s.ReloadsDispatched != 1 {
		t.Errorf("ReloadsDispatched = %d, want 1", s.ReloadsDispatched)
	}
}

func TestDrain_RelativePaths(t *testing.T) {
	root := filepath.Join("/", "project", "assets")
	src := &stubSource{}
	src.push(KindModify, filepath.Join(root, "sprites", "hero.png"))

	var reloads []string
	b := NewBridge(src, root, collectReloads(&reloads), BridgeOptions{})
	b.Drain()

	want := filepath.Join("sprites", "hero.png")
	if len(reloads) != 1 || reloads[0] != want {
		t.Errorf("reloads = %v, want [%s]", reloads, want)
	}
}

func TestDrain_MultiPathEvent(t *testing.T) {
	root := filepath.Join("/", "assets")
	src := &stubSource{}
	src.push(KindModify, filepath.Join(root, "a.png"), filepath.Join(root, "b.png"))

	var reloads []string
	b := NewBridge(src, root, collectReloads(&reloads), BridgeOptions{})
	b.Drain()

	if len(reloads) != 2 {
		t.Errorf("reloads = %v, want both paths", reloads)
	}
}

func TestDrain_DisconnectedPanics(t *testing.T) {
	src := &stubSource{disconnected: true}
	b := NewBridge(src, "/assets", func(string) {}, BridgeOptions{})

	defer func() {
		if recover() == nil {
			t.Error("expected panic on disconnected queue")
		}
	}()
	b.Drain()
}
