// Package source composes address building, caching and remote retrieval
// behind the host-facing asset reader contract.
package source

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/pithecene-io/webasset/addr"
	"github.com/pithecene-io/webasset/cache"
	"github.com/pithecene-io/webasset/fetch"
	"github.com/pithecene-io/webasset/log"
	"github.com/pithecene-io/webasset/metrics"
)

// AssetReader is the read-by-path contract a host registers per URI
// scheme. It mirrors the host's local reader capability so remote sources
// are drop-in.
type AssetReader interface {
	// Read returns the asset bytes for a relative path.
	Read(ctx context.Context, path string) ([]byte, error)

	// ReadMeta returns the sidecar metadata bytes for a relative path.
	ReadMeta(ctx context.Context, path string) ([]byte, error)

	// IsDirectory reports whether the path names a directory.
	IsDirectory(ctx context.Context, path string) bool

	// ReadDirectory lists the entries under a directory path.
	ReadDirectory(ctx context.Context, path string) ([]string, error)
}

// Config is the caller-controlled reader configuration. It may be
// replaced at runtime via Configure; each request works from a private
// snapshot, so in-flight reads never observe a torn update.
type Config struct {
	// UserAgent is sent when the Headers multimap carries no User-Agent.
	UserAgent string
	// Headers are attached to every request. Repeated keys keep their
	// insertion order.
	Headers http.Header
	// Query parameters appended to every address, in insertion order.
	Query []addr.QueryParam
	// StripFakeExtensions removes double-dot fake extensions from
	// filenames before the request is sent.
	StripFakeExtensions bool
	// EnableCache turns on the read-through/write-through content cache.
	// Ignored when the reader was built without a cache.
	EnableCache bool
	// RejectMeta makes ReadMeta fail immediately with a not-found error,
	// without any network I/O. For origins that penalize metadata probing.
	RejectMeta bool
}

// clone returns a deep copy safe to use after the config lock is released.
func (c Config) clone() Config {
	out := c
	out.Headers = c.Headers.Clone()
	if c.Query != nil {
		out.Query = make([]addr.QueryParam, len(c.Query))
		copy(out.Query, c.Query)
	}
	return out
}

// ReaderOptions wires the collaborators of a WebReader.
type ReaderOptions struct {
	// Cache is the content cache. Nil disables caching regardless of
	// Config.EnableCache.
	Cache cache.Cache
	// Logger defaults to a nop logger.
	Logger *log.Logger
	// Metrics is optional; a nil collector records nothing.
	Metrics *metrics.Collector
	// Config is the initial reader configuration.
	Config Config
}

// WebReader serves read-by-path requests for one URI scheme by fetching
// from the network, with optional persistent caching.
//
// Each Read is an independent operation: concurrent reads share only the
// read-mostly Config (snapshotted under a short-lived lock, never held
// across the fetch) and the cache, whose same-key writes are idempotent.
// No fetch coalescing is performed; concurrent reads of the same uncached
// address each fetch independently.
type WebReader struct {
	scheme  addr.Scheme
	fetcher fetch.Fetcher
	cache   cache.Cache
	log     *log.Logger
	metrics *metrics.Collector

	mu  sync.RWMutex
	cfg Config
}

// NewWebReader creates a reader for the given scheme and fetch backend.
func NewWebReader(scheme addr.Scheme, fetcher fetch.Fetcher, opts ReaderOptions) *WebReader {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &WebReader{
		scheme:  scheme,
		fetcher: fetcher,
		cache:   opts.Cache,
		log:     logger,
		metrics: opts.Metrics,
		cfg:     opts.Config.clone(),
	}
}

// Configure replaces the reader configuration. In-flight requests keep
// their snapshot; subsequent requests observe the new value.
func (r *WebReader) Configure(cfg Config) {
	r.mu.Lock()
	r.cfg = cfg.clone()
	r.mu.Unlock()
}

// snapshot copies the config under the shared lock. The lock is released
// before any I/O begins.
func (r *WebReader) snapshot() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.clone()
}

// Read builds the request address and serves it through the cache-then-
// network pipeline.
func (r *WebReader) Read(ctx context.Context, path string) ([]byte, error) {
	snap := r.snapshot()
	uri := r.builder(snap).MakeURI(path)
	return r.readURI(ctx, uri, snap)
}

// ReadMeta serves the companion metadata address for path. Paths without
// an extension have no meta address and answer not-found; when RejectMeta
// is configured the request fails before any address is built.
func (r *WebReader) ReadMeta(ctx context.Context, path string) ([]byte, error) {
	snap := r.snapshot()
	if snap.RejectMeta {
		return nil, &fetch.NotFoundError{URI: path}
	}
	uri, ok := r.builder(snap).MakeMetaURI(path)
	if !ok {
		return nil, &fetch.NotFoundError{URI: path}
	}
	return r.readURI(ctx, uri, snap)
}

// IsDirectory always reports false: remote addresses have no directory
// semantics in this model.
func (r *WebReader) IsDirectory(context.Context, string) bool {
	return false
}

// ReadDirectory always fails with not-found: directory listing over a
// remote address is unsupported.
func (r *WebReader) ReadDirectory(_ context.Context, path string) ([]string, error) {
	snap := r.snapshot()
	return nil, &fetch.NotFoundError{URI: r.builder(snap).MakeURI(path)}
}

func (r *WebReader) builder(snap Config) *addr.Builder {
	return &addr.Builder{
		Scheme:              r.scheme,
		StripFakeExtensions: snap.StripFakeExtensions,
		Query:               snap.Query,
	}
}

// readURI runs the cache→fetch→cache pipeline for a built address.
func (r *WebReader) readURI(ctx context.Context, uri string, snap Config) ([]byte, error) {
	useCache := r.cache != nil && snap.EnableCache

	if useCache {
		if data, ok := r.cache.TryRead(ctx, uri); ok {
			r.metrics.CacheHit()
			r.log.Debug("cache hit", map[string]any{"uri": uri})
			return data, nil
		}
		r.metrics.CacheMiss()
	}

	header := snap.Headers
	if snap.UserAgent != "" && header.Get("User-Agent") == "" {
		if header == nil {
			header = http.Header{}
		}
		header.Set("User-Agent", snap.UserAgent)
	}

	r.metrics.FetchStarted()
	r.log.Info("fetching", map[string]any{"uri": uri})
	data, err := r.fetcher.Fetch(ctx, uri, header)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			r.metrics.FetchNotFound()
		} else {
			r.metrics.FetchFailed()
		}
		return nil, err
	}
	r.metrics.FetchSucceeded()

	// Write-through is best effort: the bytes are already in hand, so a
	// failed cache write is logged and the read still succeeds.
	if useCache {
		if err := r.cache.TryWrite(ctx, uri, data); err != nil {
			r.metrics.CacheWriteFailed()
			r.log.Warn("cache write failed", map[string]any{"uri": uri, "error": err.Error()})
		}
	}

	return data, nil
}

// Verify WebReader implements AssetReader.
var _ AssetReader = (*WebReader)(nil)
