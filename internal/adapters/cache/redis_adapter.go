package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carefinder/backend/internal/domain/providers"
	redisclient "github.com/carefinder/backend/internal/infrastructure/clients/redis"
)

// keyPrefix namespaces every entry so Flush only touches our own keys.
const keyPrefix = "carefinder:"

// RedisAdapter implements the CacheProvider interface using Redis
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{
		client: client,
	}
}

// Get retrieves a value from cache
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := a.client.Client().Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}
	return result, nil
}

// Set stores a value in cache with expiration
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	expiration := time.Duration(expirationSeconds) * time.Second
	if err := a.client.Client().Set(ctx, keyPrefix+key, value, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

// Delete removes a value from cache
func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := a.client.Client().Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}

// Exists checks if a key exists in cache
func (a *RedisAdapter) Exists(ctx context.Context, key string) (bool, error) {
	result, err := a.client.Client().Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence in cache: %w", err)
	}
	return result > 0, nil
}

// Increment adds amount to a counter key and returns the new value. The
// TTL is applied only when the increment created the key.
func (a *RedisAdapter) Increment(ctx context.Context, key string, amount int64, expirationSeconds int) (int64, error) {
	prefixed := keyPrefix + key
	value, err := a.client.Client().IncrBy(ctx, prefixed, amount).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment in cache: %w", err)
	}
	if value == amount {
		expiration := time.Duration(expirationSeconds) * time.Second
		if err := a.client.Client().Expire(ctx, prefixed, expiration).Err(); err != nil {
			return value, fmt.Errorf("failed to set counter expiry: %w", err)
		}
	}
	return value, nil
}

// Flush removes every entry under this cache's prefix.
func (a *RedisAdapter) Flush(ctx context.Context) error {
	client := a.client.Client()
	iter := client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to flush cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return nil
}
