// Package kvstore is the client-side key-value store: small string values
// that survive restarts, like browser local storage.
package kvstore

import (
	"context"
	"strings"
)

// Store persists string values by key. Callers treat every failure as
// non-fatal: a failed Get is a cache miss, a failed Set is a no-op.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the underlying resources.
	Close() error
}

const ratingKeyPrefix = "rating_"

// keyEscaper makes the "_" separator unambiguous inside identifiers.
var keyEscaper = strings.NewReplacer("%", "%25", "_", "%5F")

// RatingKey derives the cache key of a rater's rating for a subject.
// Identifiers without "_" or "%" keep their literal spelling, so rater u1
// and subject g42 map to "rating_u1_g42". Distinct pairs never collide.
func RatingKey(rater, subject string) string {
	return ratingKeyPrefix + keyEscaper.Replace(rater) + "_" + keyEscaper.Replace(subject)
}
