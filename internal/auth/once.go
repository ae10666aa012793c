package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// OnceStore records keys that may be claimed a single time within a TTL.
type OnceStore interface {
	// Claim returns true for the first caller of key and false afterwards.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisOnceStore implements OnceStore with SETNX.
type RedisOnceStore struct {
	client *redis.Client
	prefix string
}

// NewRedisOnceStore wraps a go-redis client. Keys are namespaced by prefix.
func NewRedisOnceStore(client *redis.Client, prefix string) *RedisOnceStore {
	return &RedisOnceStore{client: client, prefix: prefix}
}

// Claim implements OnceStore.
func (s *RedisOnceStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s == nil || s.client == nil {
		return false, errors.New("redis client not configured")
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.SetNX(ctx, s.prefix+key, 1, ttl).Result()
}
