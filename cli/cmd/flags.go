// Package cmd provides CLI commands for the webasset binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags across commands.
var (
	// ConfigFlag points at a webasset.yaml config file. Flags always
	// override config values.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to webasset.yaml config file",
	}

	// SchemeFlag selects the address scheme: http or https.
	SchemeFlag = &cli.StringFlag{
		Name:  "scheme",
		Usage: "Address scheme: http or https",
	}

	// UserAgentFlag overrides the User-Agent sent with requests.
	UserAgentFlag = &cli.StringFlag{
		Name:  "user-agent",
		Usage: "User-Agent header value",
	}

	// HeaderFlag adds a request header ("Name: value"). Repeatable;
	// repeated names send multiple values in flag order.
	HeaderFlag = &cli.StringSliceFlag{
		Name:    "header",
		Aliases: []string{"H"},
		Usage:   "Request header as 'Name: value' (repeatable)",
	}

	// QueryFlag appends a query parameter ("key=value") to every built
	// address. Repeatable; order is preserved.
	QueryFlag = &cli.StringSliceFlag{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Query parameter as 'key=value' (repeatable)",
	}

	// StripFakeExtensionsFlag enables double-dot extension stripping.
	StripFakeExtensionsFlag = &cli.BoolFlag{
		Name:  "strip-fake-extensions",
		Usage: "Strip '..ext' fake extensions from the final path segment",
	}

	// TimeoutFlag bounds each request.
	TimeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "Per-request timeout (e.g. 15s)",
	}

	// Cache flags.
	NoCacheFlag = &cli.BoolFlag{
		Name:  "no-cache",
		Usage: "Bypass the asset cache",
	}
	CacheDirFlag = &cli.StringFlag{
		Name:  "cache-dir",
		Usage: "Cache directory (disk backend, defaults to the user cache dir)",
	}
	CacheBackendFlag = &cli.StringFlag{
		Name:  "cache-backend",
		Usage: "Cache backend: disk or s3",
	}
	CacheCompressFlag = &cli.BoolFlag{
		Name:  "cache-compress",
		Usage: "Compress cache entries with zstd (disk backend)",
	}
	CacheBucketFlag = &cli.StringFlag{
		Name:  "cache-bucket",
		Usage: "S3 bucket for the s3 cache backend",
	}
	CachePrefixFlag = &cli.StringFlag{
		Name:  "cache-prefix",
		Usage: "Key prefix for the s3 cache backend",
	}
	CacheRegionFlag = &cli.StringFlag{
		Name:  "cache-region",
		Usage: "AWS region for the s3 cache backend",
	}
	CacheEndpointFlag = &cli.StringFlag{
		Name:  "cache-endpoint",
		Usage: "Custom S3 endpoint (e.g. MinIO) for the s3 cache backend",
	}
	CachePathStyleFlag = &cli.BoolFlag{
		Name:  "cache-path-style",
		Usage: "Use path-style S3 addressing",
	}

	// VerboseFlag enables debug logging.
	VerboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
)

// RequestFlags returns the flags shared by commands that build addresses
// and perform requests.
func RequestFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		SchemeFlag,
		UserAgentFlag,
		HeaderFlag,
		QueryFlag,
		StripFakeExtensionsFlag,
		TimeoutFlag,
		VerboseFlag,
	}
}

// CacheFlags returns the flags that configure the asset cache.
func CacheFlags() []cli.Flag {
	return []cli.Flag{
		NoCacheFlag,
		CacheDirFlag,
		CacheBackendFlag,
		CacheCompressFlag,
		CacheBucketFlag,
		CachePrefixFlag,
		CacheRegionFlag,
		CacheEndpointFlag,
		CachePathStyleFlag,
	}
}
