// Package iox provides small I/O cleanup helpers shared across packages.
package iox

import "io"

// DiscardClose closes c and discards the error. For defer sites where a
// close failure is unactionable:
//
//	defer iox.DiscardClose(resp.Body)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c, for t.Cleanup
// registration:
//
//	t.Cleanup(iox.CloseFunc(watcher))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and discards the returned error. For non-Close
// cleanup such as Flush or Sync:
//
//	defer iox.DiscardErr(log.Sync)
func DiscardErr(fn func() error) { _ = fn() }
