// package store implements the durable credential store backing the token
// lifecycle managers.
//
// Values are namespaced strings keyed by platform, token kind and user id.
// Entries may carry a TTL; an expired entry is indistinguishable from an
// absent one. Callers treat absence as "needs refresh or re-auth", never as
// an error.
package store

import (
	"fmt"
	"time"
)

// Store is a key-value store with optional per-entry expiry.
type Store interface {
	// Put stores value under key. A ttl <= 0 means the entry never expires.
	Put(key, value string, ttl time.Duration) error

	// Get returns the value for key. The second return is false when the
	// key is absent or its TTL has elapsed.
	Get(key string) (string, bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	Close() error
}

// AccessTokenKey builds the storage key for a platform access token.
func AccessTokenKey(platform, userID string) string {
	return fmt.Sprintf("%s_access_token:%s", platform, userID)
}

// RefreshTokenKey builds the storage key for a platform refresh token.
func RefreshTokenKey(platform, userID string) string {
	return fmt.Sprintf("%s_refresh_token:%s", platform, userID)
}
