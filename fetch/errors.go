package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors for fetch failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrNotFound indicates the origin answered with HTTP 404, or that a
	// derived address (meta, directory) is undefined for the request.
	ErrNotFound = errors.New("asset not found")

	// ErrTransport indicates any other failure: a non-200/404 status, a
	// connection-level error, or a malformed response.
	ErrTransport = errors.New("transport error")
)

// NotFoundError reports that the origin has no asset at the address.
type NotFoundError struct {
	// URI is the fully qualified address that was requested.
	URI string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("asset not found: %s", e.URI)
}

// Is reports a match for the ErrNotFound sentinel.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TransportError reports a failed retrieval that is not a 404.
// Status is the HTTP status code, or 0 when the failure happened below
// the HTTP layer (DNS, connect, timeout); in that case Err carries the
// underlying cause.
type TransportError struct {
	URI    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URI, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URI, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As chain traversal.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports a match for the ErrTransport sentinel.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
