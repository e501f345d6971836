//go:build !js

package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pithecene-io/webasset/iox"
	"github.com/pithecene-io/webasset/log"
)

// DefaultTimeout is the default per-request timeout for the native client.
const DefaultTimeout = 30 * time.Second

// Options configures the native HTTP client.
type Options struct {
	// Timeout is the per-request timeout (default 30s). Set to a negative
	// value for no timeout.
	Timeout time.Duration
	// FollowRedirects enables redirect following. Off by default: the
	// reader surfaces 3xx statuses as transport errors unless the caller
	// opts in.
	FollowRedirects bool
	// UserAgent is sent with every request when the caller has not set a
	// User-Agent header of their own.
	UserAgent string
	// Logger receives per-fetch debug output. Defaults to a nop logger.
	Logger *log.Logger
}

// Client is the native Fetcher backend. The blocking round trip runs on
// its own goroutine and the result is awaited through a channel, so a
// caller multiplexing many loads keeps running while the network call is
// in flight.
type Client struct {
	http      *http.Client
	userAgent string
	log       *log.Logger
}

// NewClient creates a native fetch client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		timeout = 0
	}

	hc := &http.Client{Timeout: timeout}
	if !opts.FollowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}

	return &Client{
		http:      hc,
		userAgent: opts.UserAgent,
		log:       logger,
	}
}

type fetchResult struct {
	body []byte
	err  error
}

// Fetch retrieves the asset at uri. The round trip is dispatched to a
// worker goroutine; the calling goroutine only waits on the result channel
// or on context cancellation. A caller that stops waiting abandons the
// result, and the worker's resources are released when the round trip
// finishes or the context fires.
func (c *Client) Fetch(ctx context.Context, uri string, header http.Header) ([]byte, error) {
	c.log.Debug("fetching", map[string]any{"uri": uri})

	ch := make(chan fetchResult, 1)
	go func() {
		body, err := c.do(ctx, uri, header)
		ch <- fetchResult{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, &TransportError{URI: uri, Err: ctx.Err()}
	case r := <-ch:
		return r.body, r.err
	}
}

// do performs the blocking round trip and classifies the response.
func (c *Client) do(ctx context.Context, uri string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &TransportError{URI: uri, Err: err}
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URI: uri, Err: err}
	}
	defer iox.DiscardClose(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URI: uri, Err: err}
	}

	return classify(uri, resp.StatusCode, body)
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Verify Client implements Fetcher.
var _ Fetcher = (*Client)(nil)
