// Package addr builds the fully qualified request addresses used by the
// web asset reader.
//
// Addresses are plain strings of the form "<scheme>://<relative-path>".
// The relative path is passed through verbatim: no ".." normalization and
// no percent re-encoding, so the origin sees exactly the path the caller
// asked for. Query parameters are kept as an ordered slice so the same
// builder always produces the same address, which keeps cache keys and
// test expectations stable.
package addr

import (
	"path"
	"strings"
)

// Scheme is the URI scheme an address is built for.
type Scheme string

// Supported schemes.
const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// Prefix returns the address prefix for the scheme, e.g. "https://".
func (s Scheme) Prefix() string {
	return string(s) + "://"
}

// QueryParam is a single key=value query pair. Pairs are emitted in slice
// order; keys are unique by convention but not enforced here.
type QueryParam struct {
	Key   string
	Value string
}

// Builder assembles request addresses for one scheme.
// The zero value builds plain "<scheme>://<path>" addresses.
type Builder struct {
	// Scheme is prepended to every address.
	Scheme Scheme

	// StripFakeExtensions removes a fake double-dot extension from the
	// final path segment ("name..png" becomes "name"). Callers use the
	// double-dot pattern to encode loader hints in filenames without
	// changing the name the origin expects.
	StripFakeExtensions bool

	// Query parameters appended to every address, in slice order.
	Query []QueryParam
}

// MakeURI builds the canonical request address for a relative path.
func (b *Builder) MakeURI(relative string) string {
	return b.base(relative) + b.queryString()
}

// MakeMetaURI builds the companion metadata address for a relative path.
// Meta addresses are only defined for extensioned assets; ok is false when
// the final path segment has no extension.
func (b *Builder) MakeMetaURI(relative string) (uri string, ok bool) {
	if path.Ext(lastSegment(relative)) == "" {
		return "", false
	}
	return b.base(relative) + ".meta" + b.queryString(), true
}

// base joins the scheme prefix with the relative path, applying fake
// extension stripping when configured. The path itself is never rewritten
// beyond that.
func (b *Builder) base(relative string) string {
	if b.StripFakeExtensions {
		relative = stripFakeExtension(relative)
	}
	return b.Scheme.Prefix() + relative
}

// queryString renders the configured query parameters as
// "?k=v&k2=v2", or "" when no parameters are configured.
func (b *Builder) queryString() string {
	if len(b.Query) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range b.Query {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		sb.WriteString(p.Value)
	}
	return sb.String()
}

// stripFakeExtension removes a fake extension from the final path segment.
// A fake extension is an empty extension component directly before the real
// one: "a/b/name..png" -> "a/b/name". Single-dot names are left alone, and
// the double dot must sit immediately before the last extension, so
// "a/b/name.png" and "a/b/na..me.png" pass through unchanged.
func stripFakeExtension(p string) string {
	slash := strings.LastIndexByte(p, '/')
	name := p[slash+1:]

	i := strings.LastIndex(name, "..")
	if i < 0 || strings.Contains(name[i+2:], ".") {
		return p
	}
	return p[:slash+1] + name[:i]
}

// lastSegment returns the final path segment of a relative path.
func lastSegment(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
