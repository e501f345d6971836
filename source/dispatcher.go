package source

import (
	"context"
	"strings"

	"github.com/pithecene-io/webasset/addr"
	"github.com/pithecene-io/webasset/fetch"
)

// WatchFunc registers a local path for change watching.
type WatchFunc func(path string) error

// Dispatcher routes read-by-path calls by address prefix: paths starting
// with a registered scheme token ("http://", "https://") go to that
// scheme's reader with the token stripped, everything else goes to the
// host's default local reader. This lets a host keep a single reader
// surface for mixed local and remote asset paths.
type Dispatcher struct {
	readers  map[addr.Scheme]AssetReader
	fallback AssetReader
	watch    WatchFunc
}

// NewDispatcher creates a dispatcher over the host's default reader.
// fallback may be nil, in which case non-remote paths answer not-found.
func NewDispatcher(fallback AssetReader) *Dispatcher {
	return &Dispatcher{
		readers:  make(map[addr.Scheme]AssetReader),
		fallback: fallback,
	}
}

// Register routes paths with the scheme's prefix to r.
func (d *Dispatcher) Register(scheme addr.Scheme, r AssetReader) {
	d.readers[scheme] = r
}

// SetWatchFunc installs the local change-watch registration hook used by
// WatchPath.
func (d *Dispatcher) SetWatchFunc(fn WatchFunc) {
	d.watch = fn
}

// split resolves a path to its reader. ok is false for non-remote paths.
func (d *Dispatcher) split(path string) (AssetReader, string, bool) {
	for scheme, r := range d.readers {
		if rest, found := strings.CutPrefix(path, scheme.Prefix()); found {
			return r, rest, true
		}
	}
	return nil, "", false
}

// Read routes to the scheme reader or the fallback.
func (d *Dispatcher) Read(ctx context.Context, path string) ([]byte, error) {
	if r, rest, ok := d.split(path); ok {
		return r.Read(ctx, rest)
	}
	if d.fallback == nil {
		return nil, &fetch.NotFoundError{URI: path}
	}
	return d.fallback.Read(ctx, path)
}

// ReadMeta routes to the scheme reader or the fallback.
func (d *Dispatcher) ReadMeta(ctx context.Context, path string) ([]byte, error) {
	if r, rest, ok := d.split(path); ok {
		return r.ReadMeta(ctx, rest)
	}
	if d.fallback == nil {
		return nil, &fetch.NotFoundError{URI: path}
	}
	return d.fallback.ReadMeta(ctx, path)
}

// IsDirectory routes to the scheme reader or the fallback.
func (d *Dispatcher) IsDirectory(ctx context.Context, path string) bool {
	if r, rest, ok := d.split(path); ok {
		return r.IsDirectory(ctx, rest)
	}
	if d.fallback == nil {
		return false
	}
	return d.fallback.IsDirectory(ctx, path)
}

// ReadDirectory routes to the scheme reader or the fallback.
func (d *Dispatcher) ReadDirectory(ctx context.Context, path string) ([]string, error) {
	if r, rest, ok := d.split(path); ok {
		return r.ReadDirectory(ctx, rest)
	}
	if d.fallback == nil {
		return nil, &fetch.NotFoundError{URI: path}
	}
	return d.fallback.ReadDirectory(ctx, path)
}

// WatchPath registers a local path for change watching. Remote addresses
// are accepted and silently succeed: pretending success keeps the host's
// generic watch call path uniform across local and remote sources.
func (d *Dispatcher) WatchPath(path string) error {
	if _, _, ok := d.split(path); ok {
		return nil
	}
	if d.watch == nil {
		return nil
	}
	return d.watch(path)
}

// Verify Dispatcher implements AssetReader.
var _ AssetReader = (*Dispatcher)(nil)
