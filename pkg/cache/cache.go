// Package cache is a small read-through JSON cache over Redis used for
// the reference data endpoints (locations, vehicle catalog). It is safe
// to use with no client configured: lookups miss and writes are no-ops.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Initialize sets the Redis client. Passing nil disables the cache.
func Initialize(c *redis.Client) {
	client = c
}

// Enabled reports whether a Redis client has been configured.
func Enabled() bool {
	return client != nil
}

// GetJSON looks up key and unmarshals the stored JSON into dest.
// The first return value reports whether the key was present.
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if client == nil {
		return false, nil
	}
	data, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(data), dest)
}

// SetJSON marshals value and stores it under key with the given TTL.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, ttl).Err()
}
