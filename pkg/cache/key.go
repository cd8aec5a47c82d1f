package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint identifies a logical request for caching purposes.
// It is the hex form of a SHA-256 digest, so distinct logical requests
// colliding is not a practical concern.
type Fingerprint string

// ComputeFingerprint derives the fingerprint for a logical request from the
// endpoint name, the response language and the request parameters.
//
// Parameters are sorted by key before hashing, so equivalent calls with
// differently ordered arguments map to the same entry. The language and the
// endpoint both participate, so the same parameters against a different
// endpoint or language produce a different fingerprint.
func ComputeFingerprint(endpoint, lang string, params map[string]string) Fingerprint {
	parts := make([]string, 0, len(params)+2)
	parts = append(parts, endpoint, lang)

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, params[k]))
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return Fingerprint(hex.EncodeToString(sum[:]))
}
