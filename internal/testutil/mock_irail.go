// Package testutil provides testing utilities for the iRail client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockIRail is a configurable mock iRail server for testing. Endpoints are
// addressed by their upstream path, e.g. "/liveboard/".
type MockIRail struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requestCount     int
	conditionalCount int
	lastHeader       http.Header
	lastQuery        map[string]string
}

// NewMockIRail creates a mock iRail server.
func NewMockIRail() *MockIRail {
	mock := &MockIRail{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastHeader = r.Header.Clone()
		mock.lastQuery = map[string]string{}
		for k := range r.URL.Query() {
			mock.lastQuery[k] = r.URL.Query().Get(k)
		}
		if r.Header.Get("If-None-Match") != "" {
			mock.conditionalCount++
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server's base URL.
func (m *MockIRail) URL() string {
	return m.server.URL
}

// Close shuts the server down.
func (m *MockIRail) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockIRail) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.lastHeader = nil
	m.lastQuery = nil
}

// SetHandler installs a custom handler for an endpoint path.
func (m *MockIRail) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse installs a canned response for an endpoint path.
func (m *MockIRail) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns how many requests the server received.
func (m *MockIRail) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// ConditionalCount returns how many requests carried If-None-Match.
func (m *MockIRail) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// LastHeader returns the headers of the most recent request.
func (m *MockIRail) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// LastQuery returns the query parameters of the most recent request.
func (m *MockIRail) LastQuery() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

func (m *MockIRail) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if r.Header.Get("If-None-Match") != "" {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", `"default-etag"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"version":"1.3","timestamp":"1718000000"}`))
}

// NewOKResponse creates a 200 response carrying an ETag.
func NewOKResponse(etag, body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"ETag":         etag,
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 with a Retry-After hint in seconds.
func NewRateLimitResponse(retryAfter string) MockResponse {
	headers := map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	}
	if retryAfter != "" {
		headers["Retry-After"] = retryAfter
	}
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error":"Too many requests"}`,
		Headers:    headers,
	}
}

// NewServerErrorResponse creates a 500 response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewConditionalHandler serves data with the given ETag and answers 304 to
// requests presenting a matching If-None-Match.
func NewConditionalHandler(etag, data string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(data))
	}
}

// SequenceHandler replies with each response in order, repeating the last
// one once the sequence is exhausted.
func SequenceHandler(responses ...MockResponse) http.HandlerFunc {
	var mu sync.Mutex
	idx := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[idx]
		if idx < len(responses)-1 {
			idx++
		}
		mu.Unlock()

		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	}
}
