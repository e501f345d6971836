// Package cache persists fetched asset bytes keyed by request address.
//
// The cache is deliberately simple: one file (or object) per address, no
// index, no TTL, no eviction beyond manual deletion, and no coherency with
// the origin. Existence of the entry is the hit signal. Reads that fail
// for any reason count as misses; writes are best effort and their errors
// are for logging only, because the fetched bytes are already in memory.
package cache

import (
	"context"
	"fmt"
	"strings"
)

// Cache is the content cache consulted before and after remote retrieval.
// Implementations must be safe for concurrent use. Concurrent writes to
// the same key are not coordinated: entry content is a deterministic
// function of the address, so overlapping writes are idempotent.
type Cache interface {
	// TryRead returns the cached bytes for uri. ok is false on any miss,
	// including unreadable or partially readable entries.
	TryRead(ctx context.Context, uri string) (data []byte, ok bool)

	// TryWrite persists bytes for uri. Errors are returned for logging
	// but must not fail the surrounding read.
	TryWrite(ctx context.Context, uri string, data []byte) error
}

// WriteError wraps a failed cache write with the entry location.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cache write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// splitAddress separates an address into its directory portion and final
// segment. "https://host/a/b/name.png" yields ("https://host/a/b",
// "name.png"). An address with no slash after the scheme keeps the whole
// string as the directory and an empty filename; callers reject those
// earlier (an asset address always names a file).
func splitAddress(uri string) (dir, file string) {
	i := strings.LastIndexByte(uri, '/')
	if i < 0 {
		return uri, ""
	}
	return uri[:i], uri[i+1:]
}
