package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/pithecene-io/webasset/types"
)

// compressedExt marks zstd-compressed entries on disk. Compressed and
// uncompressed caches use distinct entry names so flipping the option
// never misreads existing entries.
const compressedExt = ".zst"

// DiskOptions configures the on-disk cache.
type DiskOptions struct {
	// Dir is the cache root. Empty resolves to
	// <platform-cache-dir>/<AppID>.
	Dir string
	// AppID names the subdirectory under the platform cache dir when Dir
	// is empty. Defaults to types.AppID.
	AppID string
	// Compress stores entries zstd-compressed.
	Compress bool
}

// DiskCache stores one file per address under
// <root>/<slug(directory-of(address))>/<filename-of(address)>.
type DiskCache struct {
	root     string
	compress bool
	enc      *zstd.Encoder
	dec      *zstd.Decoder
}

// NewDiskCache creates a disk cache, resolving and creating the root
// directory.
func NewDiskCache(opts DiskOptions) (*DiskCache, error) {
	root := opts.Dir
	if root == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		appID := opts.AppID
		if appID == "" {
			appID = types.AppID
		}
		root = filepath.Join(base, appID)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache root %s: %w", root, err)
	}

	c := &DiskCache{root: root, compress: opts.Compress}
	if opts.Compress {
		var err error
		if c.enc, err = zstd.NewWriter(nil); err != nil {
			return nil, fmt.Errorf("init zstd encoder: %w", err)
		}
		if c.dec, err = zstd.NewReader(nil); err != nil {
			return nil, fmt.Errorf("init zstd decoder: %w", err)
		}
	}
	return c, nil
}

// Root returns the resolved cache root directory.
func (c *DiskCache) Root() string {
	return c.root
}

// EntryPath returns the on-disk location for an address.
func (c *DiskCache) EntryPath(uri string) string {
	dir, file := splitAddress(uri)
	p := filepath.Join(c.root, Slugify(dir), file)
	if c.compress {
		p += compressedExt
	}
	return p
}

// TryRead returns the cached bytes for uri. Any read or decode failure is
// a miss: the caller falls through to the network.
func (c *DiskCache) TryRead(_ context.Context, uri string) ([]byte, bool) {
	data, err := os.ReadFile(c.EntryPath(uri))
	if err != nil {
		return nil, false
	}
	if c.compress {
		out, err := c.dec.DecodeAll(data, nil)
		if err != nil {
			return nil, false
		}
		return out, true
	}
	return data, true
}

// TryWrite persists bytes for uri. The entry is written to a temp file in
// the destination directory and renamed into place, so a concurrent
// TryRead never observes a partial entry.
func (c *DiskCache) TryWrite(_ context.Context, uri string, data []byte) error {
	target := c.EntryPath(uri)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &WriteError{Path: target, Err: err}
	}

	if c.compress {
		data = c.enc.EncodeAll(data, nil)
	}

	tmp := target + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &WriteError{Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return &WriteError{Path: target, Err: err}
	}
	return nil
}

// Clear removes every cached entry under the root. The root directory
// itself is recreated empty.
func (c *DiskCache) Clear() error {
	if err := os.RemoveAll(c.root); err != nil {
		return err
	}
	return os.MkdirAll(c.root, 0o755)
}

// Verify DiskCache implements Cache.
var _ Cache = (*DiskCache)(nil)
