package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memberdesk/accounts-api/internal/api/metrics"
)

// RedisScope is the durable storage scope. Records survive process restarts
// and expire after ttl (zero means no expiry).
type RedisScope struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisScope(client *redis.Client, prefix string, ttl time.Duration) *RedisScope {
	if prefix == "" {
		prefix = "accounts"
	}
	return &RedisScope{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisScope) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisScope) Write(ctx context.Context, key string, value []byte) error {
	defer metrics.ObserveBackendOp("redis", "scope_write", time.Now())

	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis scope write: %w", err)
	}
	return nil
}

func (s *RedisScope) Read(ctx context.Context, key string) ([]byte, bool, error) {
	defer metrics.ObserveBackendOp("redis", "scope_read", time.Now())

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis scope read: %w", err)
	}
	return data, true, nil
}

func (s *RedisScope) Delete(ctx context.Context, key string) error {
	defer metrics.ObserveBackendOp("redis", "scope_delete", time.Now())

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis scope delete: %w", err)
	}
	return nil
}
