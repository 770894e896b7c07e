// Package cache provides an optional response cache in front of the
// chat pipeline. With Redis configured identical queries skip the
// language model; without it the no-op cache keeps the engine code
// uniform.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores rendered responses keyed by normalized query
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Close() error
}

// Key normalizes a query into a stable cache key
func Key(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "resp:" + hex.EncodeToString(sum[:16])
}

// Redis is a Cache backed by a Redis instance
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis at addr and verifies the connection
func NewRedis(ctx context.Context, addr, password string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &Redis{client: client}, nil
}

// Get implements Cache.Get. Errors are treated as misses.
func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set implements Cache.Set. Failures are ignored; the cache is advisory.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) {
	r.client.Set(ctx, key, value, ttl)
}

// Close implements Cache.Close
func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop is a Cache that stores nothing
type Noop struct{}

// NewNoop creates a cache that always misses
func NewNoop() Noop { return Noop{} }

func (Noop) Get(ctx context.Context, key string) (string, bool) { return "", false }

func (Noop) Set(ctx context.Context, key, value string, ttl time.Duration) {}

func (Noop) Close() error { return nil }
