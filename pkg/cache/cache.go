// Package cache provides a pluggable byte cache used for expensive external
// lookups. Production wiring uses Redis; tests and cache-disabled deployments
// use the in-memory store.
package cache

import (
	"context"
	"time"
)

// Store is a TTL-bounded key-value cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
