package cacheinfra

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisStore keeps msgpack encoded entries in redis under
// "<prefix>:<version>:<key>".
type RedisStore[T any] struct {
	client redis.UniversalClient
	cfg    RedisConfig
}

// NewRedisStore validates cfg and wraps client.
func NewRedisStore[T any](client redis.UniversalClient, cfg RedisConfig) (*RedisStore[T], error) {
	if client == nil {
		return nil, &ConfigError{Field: "client", Message: "cannot be nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RedisStore[T]{client: client, cfg: cfg}, nil
}

// Key returns the redis key used for key.
func (s *RedisStore[T]) Key(key string) string {
	if s.cfg.Version == "" {
		return s.cfg.Prefix + ":" + key
	}
	return s.cfg.Prefix + ":" + s.cfg.Version + ":" + key
}

func (s *RedisStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var value T

	raw, err := s.client.Get(ctx, s.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := msgpack.Unmarshal(raw, &value); err != nil {
		return value, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStore[T]) Set(ctx context.Context, key string, value T) error {
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.Key(key), raw, s.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore[T]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.Key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
