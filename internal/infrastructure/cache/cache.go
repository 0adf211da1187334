// Package cache provides the key-value stores used for read-through caching
// of call details.
package cache

import (
	"context"
	"time"
)

// Store is a byte-value cache with per-key expiration
type Store interface {
	// Get returns the value and whether it was present and not expired
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CallKey returns the cache key of a call's detail view
func CallKey(callID string) string {
	return "call:" + callID
}
