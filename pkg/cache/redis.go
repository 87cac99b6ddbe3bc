package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries under versioned keys. Flushing a namespace bumps
// its version with INCR so old keys become unreachable at once and age out
// through their own TTL.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "cache"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) versionKey(namespace string) string {
	return fmt.Sprintf("%s:%s:version", s.prefix, namespace)
}

func (s *RedisStore) entryKey(namespace string, version int64, key string) string {
	return fmt.Sprintf("%s:%s:v%d:%s", s.prefix, namespace, version, key)
}

func (s *RedisStore) version(ctx context.Context, namespace string) (int64, error) {
	v, err := s.client.Get(ctx, s.versionKey(namespace)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache version for %s: %w", namespace, err)
	}
	return v, nil
}

func (s *RedisStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	v, err := s.version(ctx, namespace)
	if err != nil {
		return nil, false, err
	}
	data, err := s.client.Get(ctx, s.entryKey(namespace, v, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	v, err := s.version(ctx, namespace)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.entryKey(namespace, v, key), value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, namespace, key string) error {
	v, err := s.version(ctx, namespace)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, s.entryKey(namespace, v, key)).Err()
}

func (s *RedisStore) Flush(ctx context.Context, namespace string) error {
	if err := s.client.Incr(ctx, s.versionKey(namespace)).Err(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", namespace, err)
	}
	return nil
}
