//go:build js && wasm

package fetch

import (
	"context"
	"errors"
	"net/http"
	"syscall/js"

	"github.com/pithecene-io/webasset/log"
)

// Options configures the cooperative fetch client. Timeout and redirect
// policy are owned by the host environment on this target.
type Options struct {
	// UserAgent is ignored on this target: the environment forbids
	// overriding the User-Agent header.
	UserAgent string
	// Logger receives per-fetch debug output. Defaults to a nop logger.
	Logger *log.Logger
}

// Client is the cooperative Fetcher backend for js/wasm targets. Requests
// go through the environment's fetch capability; the goroutine parks on a
// channel that the promise callbacks resolve, so no blocking call ever
// holds the single thread.
type Client struct {
	log *log.Logger
}

// NewClient creates a cooperative fetch client.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{log: logger}
}

// Fetch retrieves the asset at uri through the environment fetch API.
func (c *Client) Fetch(ctx context.Context, uri string, header http.Header) ([]byte, error) {
	c.log.Debug("fetching", map[string]any{"uri": uri})

	headers := js.Global().Get("Object").New()
	for key, values := range header {
		for _, v := range values {
			headers.Call("append", key, v)
		}
	}
	opts := js.Global().Get("Object").New()
	opts.Set("headers", headers)

	respVal, err := await(ctx, js.Global().Call("fetch", uri, opts))
	if err != nil {
		return nil, &TransportError{URI: uri, Err: err}
	}

	status := respVal.Get("status").Int()
	if status != http.StatusOK {
		// Classify without draining the body; 404 and other statuses
		// carry no payload the reader cares about.
		_, cErr := classify(uri, status, nil)
		return nil, cErr
	}

	bufVal, err := await(ctx, respVal.Call("arrayBuffer"))
	if err != nil {
		return nil, &TransportError{URI: uri, Err: err}
	}

	u8 := js.Global().Get("Uint8Array").New(bufVal)
	body := make([]byte, u8.Get("length").Int())
	js.CopyBytesToGo(body, u8)

	return classify(uri, status, body)
}

// Close is a no-op on this target.
func (c *Client) Close() error { return nil }

// await parks the goroutine until the promise settles or ctx fires.
// The js.Func handles are released after the promise resolves; a promise
// abandoned by cancellation leaks its two handles, which is acceptable for
// the rare cancel-during-fetch case on this target.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	done := make(chan js.Value, 1)
	fail := make(chan error, 1)

	var onResolve, onReject js.Func
	onResolve = js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			done <- args[0]
		} else {
			done <- js.Undefined()
		}
		onResolve.Release()
		onReject.Release()
		return nil
	})
	onReject = js.FuncOf(func(_ js.Value, args []js.Value) any {
		msg := "promise rejected"
		if len(args) > 0 {
			msg = args[0].Call("toString").String()
		}
		fail <- errors.New(msg)
		onResolve.Release()
		onReject.Release()
		return nil
	})

	promise.Call("then", onResolve, onReject)

	select {
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	case err := <-fail:
		return js.Undefined(), err
	case v := <-done:
		return v, nil
	}
}

// Verify Client implements Fetcher.
var _ Fetcher = (*Client)(nil)
