package config

import (
	"fmt"
	"time"

	"github.com/pithecene-io/webasset/addr"
)

// Config represents a webasset.yaml configuration file.
// All values are optional and act as defaults for CLI flags.
// CLI flags always override config values.
type Config struct {
	Scheme              string            `yaml:"scheme"`
	UserAgent           string            `yaml:"user_agent"`
	Headers             map[string]string `yaml:"headers,omitempty"`
	Query               []QueryParam      `yaml:"query,omitempty"`
	StripFakeExtensions bool              `yaml:"strip_fake_extensions"`
	RejectMetaRequests  bool              `yaml:"reject_meta_requests"`
	Timeout             Duration          `yaml:"timeout,omitempty"`
	Cache               CacheConfig       `yaml:"cache"`
	Watch               WatchConfig       `yaml:"watch"`
	Notify              NotifyConfig      `yaml:"notify"`
}

// QueryParam is one query parameter appended to every built address.
// Declared as a list in YAML so insertion order is preserved.
type QueryParam struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// CacheConfig holds cache defaults from the config file.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Backend  string `yaml:"backend"` // "disk" (default) or "s3"
	Dir      string `yaml:"dir,omitempty"`
	Compress bool   `yaml:"compress"`

	// S3 backend settings.
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// WatchConfig holds watch defaults from the config file.
type WatchConfig struct {
	Root     string   `yaml:"root"`
	Interval Duration `yaml:"interval,omitempty"`
}

// NotifyConfig holds reload notifier defaults from the config file.
type NotifyConfig struct {
	Type    string            `yaml:"type"` // "webhook" or "redis"
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// SchemeOrDefault returns the configured scheme, defaulting to https.
func (c *Config) SchemeOrDefault() (addr.Scheme, error) {
	switch c.Scheme {
	case "", "https":
		return addr.SchemeHTTPS, nil
	case "http":
		return addr.SchemeHTTP, nil
	default:
		return "", fmt.Errorf("unknown scheme %q (expected http or https)", c.Scheme)
	}
}

// QueryParams converts the configured query list into address builder
// parameters, preserving declaration order.
func (c *Config) QueryParams() []addr.QueryParam {
	if len(c.Query) == 0 {
		return nil
	}
	params := make([]addr.QueryParam, 0, len(c.Query))
	for _, q := range c.Query {
		params = append(params, addr.QueryParam{Key: q.Key, Value: q.Value})
	}
	return params
}
