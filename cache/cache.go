package cache

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/goliatone/go-clean-arch/internal/cacheinfra"
)

// Cache stores entities by key with a fixed TTL. A miss is reported through
// the boolean, not through the error.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Set(ctx context.Context, key string, value T) error
	Delete(ctx context.Context, key string) error
}

// NewMemory returns an in-process cache backed by sturdyc.
func NewMemory[T any](cfg Config) (Cache[T], error) {
	store, err := cacheinfra.NewSturdycStore[T](cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewRedis returns a cache storing msgpack encoded values in redis.
func NewRedis[T any](client redis.UniversalClient, cfg RedisConfig) (Cache[T], error) {
	store, err := cacheinfra.NewRedisStore[T](client, cacheinfra.RedisConfig{
		TTL:     cfg.ttl(),
		Prefix:  cfg.Prefix,
		Version: cfg.Version,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

type nop[T any] struct{}

// Nop returns a cache that never stores anything.
func Nop[T any]() Cache[T] {
	return nop[T]{}
}

func (nop[T]) Get(context.Context, string) (T, bool, error) {
	var zero T
	return zero, false, nil
}

func (nop[T]) Set(context.Context, string, T) error { return nil }

func (nop[T]) Delete(context.Context, string) error { return nil }
