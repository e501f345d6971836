// Package fetch performs remote asset retrieval.
//
// Two backends satisfy the same Fetcher contract, selected by build
// target: the native backend (client_native.go) dispatches a blocking
// net/http round trip to its own goroutine, and the js/wasm backend
// (client_js.go) goes through the host environment's fetch capability,
// which is the only I/O available on that single-threaded runtime.
//
// Both backends classify responses identically: status 200 yields the
// body, 404 yields a NotFoundError, any other status yields a
// TransportError carrying the status code. Connection-level failures
// (DNS, refused, timeout) are always TransportError, never NotFound.
// This layer performs no retries; retry policy belongs to the caller.
package fetch

import (
	"context"
	"net/http"
)

// Fetcher performs a single remote retrieval.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	// Fetch retrieves the asset at uri, attaching the given headers to
	// the request. Repeated header keys are sent in slice order.
	Fetch(ctx context.Context, uri string, header http.Header) ([]byte, error)
}

// classify maps a transport status and body to the fetch result.
// Shared by both backends so behavior stays identical across targets.
func classify(uri string, status int, body []byte) ([]byte, error) {
	switch status {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, &NotFoundError{URI: uri}
	default:
		return nil, &TransportError{URI: uri, Status: status}
	}
}
