// Package metrics provides counters for the asset read and watch paths.
//
// The Collector accumulates per-reader counters. It is a leaf package with
// no internal dependencies. All increment methods are nil-receiver safe so
// callers can skip wiring a collector entirely.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Fetch path
	FetchesStarted   int64
	FetchesSucceeded int64
	FetchesNotFound  int64
	FetchesFailed    int64

	// Cache
	CacheHits          int64
	CacheMisses        int64
	CacheWriteFailures int64

	// Watch path
	ReloadsDispatched int64
	EventsIgnored     int64

	// Dimensions (informational, set at construction)
	Scheme string
}

// Collector accumulates counters for a single reader instance.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	fetchesStarted   int64
	fetchesSucceeded int64
	fetchesNotFound  int64
	fetchesFailed    int64

	cacheHits          int64
	cacheMisses        int64
	cacheWriteFailures int64

	reloadsDispatched int64
	eventsIgnored     int64

	scheme string
}

// NewCollector creates a Collector labeled with the reader's scheme.
func NewCollector(scheme string) *Collector {
	return &Collector{scheme: scheme}
}

// FetchStarted records the start of a remote fetch.
func (c *Collector) FetchStarted() {
	if c == nil {
		return
	}
	c.add(&c.fetchesStarted)
}

// FetchSucceeded records a fetch that returned bytes.
func (c *Collector) FetchSucceeded() {
	if c == nil {
		return
	}
	c.add(&c.fetchesSucceeded)
}

// FetchNotFound records a fetch that resolved to a 404.
func (c *Collector) FetchNotFound() {
	if c == nil {
		return
	}
	c.add(&c.fetchesNotFound)
}

// FetchFailed records a fetch that failed at the transport level or with
// an unexpected status.
func (c *Collector) FetchFailed() {
	if c == nil {
		return
	}
	c.add(&c.fetchesFailed)
}

// CacheHit records a read satisfied from the content cache.
func (c *Collector) CacheHit() {
	if c == nil {
		return
	}
	c.add(&c.cacheHits)
}

// CacheMiss records a cache lookup that fell through to the network.
func (c *Collector) CacheMiss() {
	if c == nil {
		return
	}
	c.add(&c.cacheMisses)
}

// CacheWriteFailed records a best-effort cache write that errored.
func (c *Collector) CacheWriteFailed() {
	if c == nil {
		return
	}
	c.add(&c.cacheWriteFailures)
}

// ReloadDispatched records one invocation of the host reload hook.
func (c *Collector) ReloadDispatched() {
	if c == nil {
		return
	}
	c.add(&c.reloadsDispatched)
}

// EventIgnored records a watch event skipped by the bridge (non-modify
// kind, or already seen in the current drain).
func (c *Collector) EventIgnored() {
	if c == nil {
		return
	}
	c.add(&c.eventsIgnored)
}

func (c *Collector) add(field *int64) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}

// Snapshot returns an immutable copy of all counters.
// A nil collector returns a zero snapshot.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		FetchesStarted:     c.fetchesStarted,
		FetchesSucceeded:   c.fetchesSucceeded,
		FetchesNotFound:    c.fetchesNotFound,
		FetchesFailed:      c.fetchesFailed,
		CacheHits:          c.cacheHits,
		CacheMisses:        c.cacheMisses,
		CacheWriteFailures: c.cacheWriteFailures,
		ReloadsDispatched:  c.reloadsDispatched,
		EventsIgnored:      c.eventsIgnored,
		Scheme:             c.scheme,
	}
}
