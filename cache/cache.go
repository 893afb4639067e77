// Package cache provides the page cache used by listing views. The store is
// injected into the router so deployments use Redis while tests use the
// in-memory implementation and can clear it deterministically.
package cache

import (
	"encoding/json"
	"time"
)

// Store is a byte-oriented key-value cache with per-entry TTL.
type Store interface {
	// GetBytes returns the cached bytes for key, or false when absent or expired.
	GetBytes(key string) ([]byte, bool)
	// SetBytes stores bytes under key for the given TTL.
	SetBytes(key string, b []byte, ttl time.Duration)
	// Delete removes a single key.
	Delete(key string)
	// Clear removes every entry owned by this store.
	Clear()
}

// SetJSON marshals v and stores the JSON bytes.
func SetJSON(s Store, key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.SetBytes(key, b, ttl)
}
