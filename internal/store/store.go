package store

import (
	"context"
	"time"
)

// Store is the session-state contract: a key-value store with per-key TTL,
// atomic at the single-key level. No cross-key transactions; the pairing
// protocol tolerates interleavings instead of requiring them.
type Store interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Delete(ctx context.Context, key string) error
	// Keys lists keys starting with prefix. Only the deferred-pairing scan
	// uses this; O(keys) on both implementations.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
