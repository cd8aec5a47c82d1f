package client

import (
	"errors"
	"fmt"
	"time"
)

// FailureKind classifies a terminal failure surfaced to callers.
type FailureKind string

const (
	// FailureNetwork is a transport-level failure (timeout, DNS, reset).
	FailureNetwork FailureKind = "network"

	// FailureServer is an HTTP 5xx response.
	FailureServer FailureKind = "server"

	// FailureRateLimit is an HTTP 429 response; carries the wait hint.
	FailureRateLimit FailureKind = "rate_limit"

	// FailureClient is an HTTP 4xx response other than 429; never retried.
	FailureClient FailureKind = "client"

	// FailureExhausted means the retry budget ran out; wraps the last cause.
	FailureExhausted FailureKind = "retries_exhausted"
)

// Sentinels matchable with errors.Is against any *APIError.
var (
	ErrNetworkFailure     = errors.New("irail: network failure")
	ErrServerFailure      = errors.New("irail: server failure")
	ErrRateLimited        = errors.New("irail: rate limited")
	ErrClientRequest      = errors.New("irail: client request error")
	ErrRetriesExhausted   = errors.New("irail: retry attempts exhausted")
	ErrMissingCachedEntry = errors.New("irail: 304 received without usable cache entry")
)

// APIError is the single error type surfaced for failed logical calls.
// Every call either returns data or one of these; an empty but well-formed
// payload is a success, never an APIError.
type APIError struct {
	// Kind is the failure classification.
	Kind FailureKind

	// StatusCode is the last HTTP status observed, 0 for pure transport
	// failures.
	StatusCode int

	// Attempts is the number of transport attempts made.
	Attempts int

	// RetryAfter is the server-advertised wait hint for rate-limit failures.
	RetryAfter time.Duration

	// Endpoint is the logical endpoint of the failed call.
	Endpoint string

	// Err is the last underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("irail %s error (endpoint %s, status %d, attempts %d)",
		e.Kind, e.Endpoint, e.StatusCode, e.Attempts)
	if e.Kind == FailureRateLimit {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches the per-kind sentinel errors, so callers can pattern-match
// without knowing the concrete type:
//
//	if errors.Is(err, client.ErrRateLimited) { ... }
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNetworkFailure:
		return e.Kind == FailureNetwork
	case ErrServerFailure:
		return e.Kind == FailureServer
	case ErrRateLimited:
		return e.Kind == FailureRateLimit
	case ErrClientRequest:
		return e.Kind == FailureClient
	case ErrRetriesExhausted:
		return e.Kind == FailureExhausted
	}
	return false
}
