package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryStore struct {
	inner *gocache.Cache
}

// NewMemoryStore creates an in-process Store. Entries are evicted lazily on
// read and by the background janitor.
func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) Store {
	return &memoryStore{inner: gocache.New(defaultTTL, cleanupInterval)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := s.inner.Get(key)
	if !found {
		return nil, false, nil
	}
	b, ok := val.([]byte)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.inner.Set(key, value, ttl)
	return nil
}
