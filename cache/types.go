// Package cache provides the query-result cache collaborator. The query
// builder constructs deterministic keys from compiled SQL and bindings and
// delegates storage to a Cache implementation; a Store adds TTL get-or-compute
// semantics with stampede protection.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache defines the storage contract. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get retrieves a value by key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the specified TTL. A zero TTL stores the
	// value without expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
