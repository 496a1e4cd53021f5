package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer. Values are stored as JSON.
type Cache interface {
	// Get unmarshals the cached value into dest. found is false on a miss
	// and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)

	// Set stores value with ttl. A zero ttl keeps the key without expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Increment adds one to the counter at key and returns the new value.
	// ttl is applied when the counter is created.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
