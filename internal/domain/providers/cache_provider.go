package providers

import (
	"context"
)

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)

	// Increment adds amount to a counter key, creating it with the given
	// TTL when absent, and returns the new value
	Increment(ctx context.Context, key string, amount int64, expirationSeconds int) (int64, error)

	// Flush removes all entries owned by this cache
	Flush(ctx context.Context) error
}
