package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webasset/addr"
	"github.com/pithecene-io/webasset/cache"
	"github.com/pithecene-io/webasset/cli/config"
	"github.com/pithecene-io/webasset/fetch"
	"github.com/pithecene-io/webasset/log"
	"github.com/pithecene-io/webasset/metrics"
	"github.com/pithecene-io/webasset/source"
)

// defaultConfigFile is probed when --config is not given.
const defaultConfigFile = "webasset.yaml"

// loadConfig resolves the effective config file. A missing default file
// yields an empty config, not an error; an explicit --config must exist.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	return &config.Config{}, nil
}

// resolveScheme merges the --scheme flag over the config value.
func resolveScheme(cfg *config.Config, c *cli.Context) (addr.Scheme, error) {
	if s := c.String("scheme"); s != "" {
		switch s {
		case "http":
			return addr.SchemeHTTP, nil
		case "https":
			return addr.SchemeHTTPS, nil
		default:
			return "", fmt.Errorf("unknown scheme %q (expected http or https)", s)
		}
	}
	return cfg.SchemeOrDefault()
}

// parseHeaders converts repeated "Name: value" flags into a multimap,
// preserving the order of repeated names.
func parseHeaders(raw []string) (http.Header, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	header := make(http.Header)
	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q (expected 'Name: value')", entry)
		}
		header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return header, nil
}

// parseQuery converts repeated "key=value" flags into ordered query
// parameters.
func parseQuery(raw []string) ([]addr.QueryParam, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make([]addr.QueryParam, 0, len(raw))
	for _, entry := range raw {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid query parameter %q (expected 'key=value')", entry)
		}
		params = append(params, addr.QueryParam{Key: key, Value: value})
	}
	return params, nil
}

// buildReaderConfig merges flags over config values into the reader
// configuration.
func buildReaderConfig(cfg *config.Config, c *cli.Context, cacheEnabled bool) (source.Config, error) {
	headers, err := parseHeaders(c.StringSlice("header"))
	if err != nil {
		return source.Config{}, err
	}
	if headers == nil && len(cfg.Headers) > 0 {
		headers = make(http.Header)
		for name, value := range cfg.Headers {
			headers.Set(name, value)
		}
	}

	query, err := parseQuery(c.StringSlice("query"))
	if err != nil {
		return source.Config{}, err
	}
	if query == nil {
		query = cfg.QueryParams()
	}

	userAgent := c.String("user-agent")
	if userAgent == "" {
		userAgent = cfg.UserAgent
	}

	strip := cfg.StripFakeExtensions
	if c.IsSet("strip-fake-extensions") {
		strip = c.Bool("strip-fake-extensions")
	}

	return source.Config{
		UserAgent:           userAgent,
		Headers:             headers,
		Query:               query,
		StripFakeExtensions: strip,
		EnableCache:         cacheEnabled,
		RejectMeta:          cfg.RejectMetaRequests,
	}, nil
}

// buildCache constructs the configured cache backend. Returns nil when
// caching is disabled.
func buildCache(ctx context.Context, cfg *config.Config, c *cli.Context) (cache.Cache, error) {
	if c.Bool("no-cache") {
		return nil, nil
	}
	if !cfg.Cache.Enabled && !c.IsSet("cache-backend") && !c.IsSet("cache-dir") {
		return nil, nil
	}

	backend := cfg.Cache.Backend
	if b := c.String("cache-backend"); b != "" {
		backend = b
	}

	switch backend {
	case "", "disk":
		dir := c.String("cache-dir")
		if dir == "" {
			dir = cfg.Cache.Dir
		}
		compress := cfg.Cache.Compress
		if c.IsSet("cache-compress") {
			compress = c.Bool("cache-compress")
		}
		return cache.NewDiskCache(cache.DiskOptions{
			Dir:      dir,
			Compress: compress,
		})

	case "s3":
		opts := cache.S3Options{
			Bucket:       firstNonEmpty(c.String("cache-bucket"), cfg.Cache.Bucket),
			Prefix:       firstNonEmpty(c.String("cache-prefix"), cfg.Cache.Prefix),
			Region:       firstNonEmpty(c.String("cache-region"), cfg.Cache.Region),
			Endpoint:     firstNonEmpty(c.String("cache-endpoint"), cfg.Cache.Endpoint),
			UsePathStyle: c.Bool("cache-path-style") || cfg.Cache.PathStyle,
		}
		return cache.NewS3Cache(ctx, opts)

	default:
		return nil, fmt.Errorf("unknown cache backend %q (expected disk or s3)", backend)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// buildReader assembles the full fetch pipeline for one scheme.
func buildReader(ctx context.Context, cfg *config.Config, c *cli.Context, component string) (*source.WebReader, *fetch.Client, *metrics.Collector, error) {
	scheme, err := resolveScheme(cfg, c)
	if err != nil {
		return nil, nil, nil, err
	}

	contentCache, err := buildCache(ctx, cfg, c)
	if err != nil {
		return nil, nil, nil, err
	}

	readerCfg, err := buildReaderConfig(cfg, c, contentCache != nil)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := log.Nop()
	if c.Bool("verbose") {
		logger = log.NewLogger(component)
	}

	timeout := c.Duration("timeout")
	if timeout == 0 {
		timeout = cfg.Timeout.Duration
	}

	client := fetch.NewClient(fetch.Options{
		Timeout:   timeout,
		UserAgent: readerCfg.UserAgent,
		Logger:    logger,
	})

	collector := metrics.NewCollector(string(scheme))
	reader := source.NewWebReader(scheme, client, source.ReaderOptions{
		Cache:   contentCache,
		Logger:  logger,
		Metrics: collector,
		Config:  readerCfg,
	})

	return reader, client, collector, nil
}
