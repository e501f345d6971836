package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pithecene-io/webasset/log"
	"github.com/pithecene-io/webasset/metrics"
)

// EventSource is the queue the bridge drains. Satisfied by *Watcher;
// narrowed to an interface for test substitution.
type EventSource interface {
	TryRecv() (Event, bool, error)
}

// ReloadFunc is the host hook invoked with the root-relative path of each
// changed asset. It runs on the goroutine calling Drain, so it must be
// safe to call from the host's main update context.
type ReloadFunc func(relativePath string)

// BridgeOptions wires the optional collaborators of a Bridge.
type BridgeOptions struct {
	// Logger defaults to a nop logger.
	Logger *log.Logger
	// Metrics is optional; a nil collector records nothing.
	Metrics *metrics.Collector
}

// Bridge translates queued filesystem events into host reload calls. Run
// Drain once per host tick.
type Bridge struct {
	src     EventSource
	root    string
	reload  ReloadFunc
	log     *log.Logger
	metrics *metrics.Collector
}

// NewBridge creates a bridge draining src for changes under root.
func NewBridge(src EventSource, root string, reload ReloadFunc, opts BridgeOptions) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Bridge{
		src:     src,
		root:    root,
		reload:  reload,
		log:     logger,
		metrics: opts.Metrics,
	}
}

// Drain consumes every currently queued event without blocking. Modified
// paths trigger the reload hook once per drain cycle; a path that keeps
// changing is reloaded again on the next drain. Create and remove events
// are ignored. A disconnected queue means the producer died mid-session,
// which has no recovery path: Drain panics so the host restarts the watch
// session rather than silently losing reloads.
func (b *Bridge) Drain() {
	seen := make(map[string]struct{})

	for {
		ev, ok, err := b.src.TryRecv()
		if err != nil {
			panic("filesystem watcher disconnected")
		}
		if !ok {
			return
		}

		if ev.Kind != KindModify {
			b.metrics.EventIgnored()
			continue
		}

		for _, p := range ev.Paths {
			if _, dup := seen[p]; dup {
				b.metrics.EventIgnored()
				continue
			}
			seen[p] = struct{}{}

			rel, err := filepath.Rel(b.root, p)
			if err != nil {
				b.log.Warn("changed path outside watch root", map[string]any{"path": p})
				continue
			}
			b.log.Debug("reloading asset", map[string]any{"path": rel})
			b.metrics.ReloadDispatched()
			b.reload(rel)
		}
	}
}

// Run drains on a fixed interval until ctx is done. Hosts with their own
// update loop call Drain directly instead.
func (b *Bridge) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Drain()
		}
	}
}
