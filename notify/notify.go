// Package notify defines the reload-event publication boundary.
//
// Notifiers push asset-reload signals to downstream consumers, such as
// a dev server telling connected browsers to refresh. The watch bridge
// owns when to publish; notifiers only deliver.
package notify

import (
	"context"
	"time"

	"github.com/pithecene-io/webasset/types"
)

// EventTypeReload is the event_type value for reload events.
const EventTypeReload = "asset_reloaded"

// ReloadEvent is the payload published when a watched asset changes.
type ReloadEvent struct {
	Version   string `json:"version" msgpack:"version"`
	EventType string `json:"event_type" msgpack:"event_type"` // always "asset_reloaded"
	Path      string `json:"path" msgpack:"path"`             // root-relative asset path
	Root      string `json:"root,omitempty" msgpack:"root,omitempty"`
	Timestamp string `json:"timestamp" msgpack:"timestamp"` // RFC 3339
	Seq       int64  `json:"seq" msgpack:"seq"`
}

// NewReloadEvent builds a reload event for a changed asset path.
func NewReloadEvent(root, path string, seq int64) *ReloadEvent {
	return &ReloadEvent{
		Version:   types.Version,
		EventType: EventTypeReload,
		Path:      path,
		Root:      root,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Seq:       seq,
	}
}

// Notifier publishes reload events to a downstream system.
type Notifier interface {
	// Publish delivers one reload event. Must respect context
	// cancellation and deadlines.
	Publish(ctx context.Context, event *ReloadEvent) error

	// Close releases notifier resources.
	Close() error
}
