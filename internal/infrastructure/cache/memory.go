package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is an in-process Store, used when Redis is not configured
type MemoryStore struct {
	items *gocache.Cache
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store. Expired items are
// removed every cleanupInterval.
func NewMemoryStore(defaultExpiration, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		items: gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Set stores a value with expiration
func (ms *MemoryStore) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	// copy so later mutation by the caller cannot leak into the cache
	v := make([]byte, len(value))
	copy(v, value)
	ms.items.Set(key, v, expiration)
	return nil
}

// Get retrieves a value by key
func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, ok := ms.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return item.([]byte), true, nil
}

// Delete removes a key
func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.items.Delete(key)
	return nil
}
