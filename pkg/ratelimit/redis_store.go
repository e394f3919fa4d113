package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed counter backend so rate limits are shared
// across instances.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis store. Keys are namespaced with prefix
// (default "ratelimit:").
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	name := s.prefix + key

	// INCR + EXPIRE NX in one transaction: the expiry is set only when the
	// key is created, so the window does not slide on every request.
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, name)
	pipe.ExpireNX(ctx, name, window)
	ttl := pipe.TTL(ctx, name)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
