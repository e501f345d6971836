package cache

import (
	"context"
	"sync"
)

// StubCache is an in-memory cache for tests. Tracks read/write counts and
// can be forced to fail writes.
type StubCache struct {
	mu sync.Mutex

	entries map[string][]byte

	// Reads is the number of TryRead calls.
	Reads int
	// Writes is the number of TryWrite calls.
	Writes int
	// ErrorOnWrite, if non-nil, is returned by every TryWrite.
	ErrorOnWrite error
}

// NewStubCache creates an empty stub cache.
func NewStubCache() *StubCache {
	return &StubCache{entries: make(map[string][]byte)}
}

// TryRead implements Cache from the in-memory map.
func (c *StubCache) TryRead(_ context.Context, uri string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Reads++
	data, ok := c.entries[uri]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}

// TryWrite implements Cache into the in-memory map.
func (c *StubCache) TryWrite(_ context.Context, uri string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Writes++
	if c.ErrorOnWrite != nil {
		return c.ErrorOnWrite
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	c.entries[uri] = stored
	return nil
}

// Len returns the number of stored entries.
func (c *StubCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Verify StubCache implements Cache.
var _ Cache = (*StubCache)(nil)
