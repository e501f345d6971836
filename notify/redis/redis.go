// Package redis implements a Redis pub/sub reload notifier.
//
// Publishes reload events as JSON to a configurable channel so that
// consumers across processes (or machines) can react to asset changes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pithecene-io/webasset/notify"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "webasset:reload"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// Config configures the Redis pub/sub notifier.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default: webasset:reload).
	Channel string
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure (default 0).
	Retries int
}

// Notifier publishes reload events via Redis PUBLISH.
type Notifier struct {
	config Config
	client *goredis.Client
}

// New creates a Redis pub/sub notifier from the given config.
// Returns an error if the URL is empty or invalid.
func New(cfg Config) (*Notifier, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis notifier requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis notifier: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}

	return &Notifier{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Publish sends the event as a JSON PUBLISH to the configured channel.
// Connection errors are retried with exponential backoff.
func (n *Notifier) Publish(ctx context.Context, event *notify.ReloadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	var lastErr error
	attempts := 1 + n.config.Retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("redis: context canceled: %w", err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("redis: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		pubCtx, cancel := context.WithTimeout(ctx, n.config.Timeout)
		lastErr = n.client.Publish(pubCtx, n.config.Channel, body).Err()
		cancel()
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("redis: failed after %d attempts: %w", attempts, lastErr)
}

// Close releases the Redis client.
func (n *Notifier) Close() error {
	return n.client.Close()
}

// Verify Notifier implements the notify interface.
var _ notify.Notifier = (*Notifier)(nil)
