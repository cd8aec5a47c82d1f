package cache

import (
	"time"
)

// Entry represents a cached iRail response tied to a server-issued ETag.
type Entry struct {
	// Data is the response body as returned by the last 200 response.
	Data []byte `json:"data"`

	// ETag is the validator sent back as If-None-Match on conditional requests.
	// Entries without an ETag are never stored.
	ETag string `json:"etag"`

	// Endpoint is the logical endpoint this entry was recorded for
	// (e.g. "liveboard"). Used for endpoint-scoped invalidation.
	Endpoint string `json:"endpoint"`

	// StoredAt is when the entry was stored. A 304 does not refresh it;
	// only a fresh 200 does.
	StoredAt time.Time `json:"stored_at"`
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// IsExpired reports whether the entry is older than maxAge.
func (e *Entry) IsExpired(maxAge time.Duration, now time.Time) bool {
	return e.Age(now) > maxAge
}
