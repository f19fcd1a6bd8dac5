package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store wraps a Cache with get-or-compute semantics. Concurrent Remember
// calls for the same key are collapsed into a single computation.
type Store struct {
	backend Cache
	sfg     singleflight.Group
}

// NewStore creates a Store over the given backend.
func NewStore(backend Cache) *Store {
	return &Store{backend: backend}
}

// Remember returns the cached value for key, or invokes fn, stores its
// result under key with the given TTL, and returns it. Errors from fn are
// returned unchanged and nothing is stored.
func (s *Store) Remember(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if value, err := s.backend.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err, _ := s.sfg.Do(key, func() (any, error) {
		// Re-check under singleflight; another caller may have filled it.
		if value, err := s.backend.Get(ctx, key); err == nil {
			return value, nil
		}

		computed, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.backend.Set(ctx, key, computed, ttl); err != nil {
			return nil, err
		}
		return computed, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]byte), nil
}

// Delete removes a key from the backend.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Key derives a deterministic cache key from compiled SQL text and its
// ordered bindings.
func Key(query string, bindings []any) string {
	payload, _ := json.Marshal(bindings)
	sum := sha256.Sum256(append([]byte(query+"|"), payload...))
	return "query:" + hex.EncodeToString(sum[:])
}

// EncodeRows serializes a result set for storage.
func EncodeRows(rows any) ([]byte, error) {
	return json.Marshal(rows)
}

// DecodeRows deserializes a stored result set.
func DecodeRows(payload []byte) ([]map[string]any, error) {
	var rows []map[string]any
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
