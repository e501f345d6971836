package fetch

import (
	"context"
	"net/http"
	"sync"
)

// StubFetcher is a test fetcher serving canned responses from memory.
// Tracks call counts for test assertions.
type StubFetcher struct {
	mu sync.Mutex

	// Bodies maps URI to the body returned with status 200.
	Bodies map[string][]byte
	// Statuses maps URI to a status code overriding the default. URIs
	// absent from both maps answer 404.
	Statuses map[string]int

	// Calls is the total number of Fetch invocations.
	Calls int
	// CallsByURI counts Fetch invocations per URI.
	CallsByURI map[string]int
	// LastHeader is the header of the most recent Fetch call.
	LastHeader http.Header
}

// NewStubFetcher creates an empty stub fetcher.
func NewStubFetcher() *StubFetcher {
	return &StubFetcher{
		Bodies:     make(map[string][]byte),
		Statuses:   make(map[string]int),
		CallsByURI: make(map[string]int),
	}
}

// Fetch implements Fetcher from the canned maps.
func (s *StubFetcher) Fetch(_ context.Context, uri string, header http.Header) ([]byte, error) {
	s.mu.Lock()
	s.Calls++
	s.CallsByURI[uri]++
	s.LastHeader = header.Clone()

	status, ok := s.Statuses[uri]
	body, hasBody := s.Bodies[uri]
	s.mu.Unlock()

	if !ok {
		if hasBody {
			status = http.StatusOK
		} else {
			status = http.StatusNotFound
		}
	}
	return classify(uri, status, body)
}

// TotalCalls returns the total Fetch invocation count.
func (s *StubFetcher) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls
}

// CallsFor returns the Fetch invocation count for one URI.
func (s *StubFetcher) CallsFor(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CallsByURI[uri]
}

// Verify StubFetcher implements Fetcher.
var _ Fetcher = (*StubFetcher)(nil)
