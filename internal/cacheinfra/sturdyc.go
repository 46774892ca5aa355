package cacheinfra

import (
	"context"

	"github.com/viccon/sturdyc"
)

// SturdycStore keeps entries in process using a sharded sturdyc client.
type SturdycStore[T any] struct {
	client *sturdyc.Client[T]
}

// NewSturdycStore validates cfg and builds the sturdyc client.
func NewSturdycStore[T any](cfg Config) (*SturdycStore[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[T](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.options()...,
	)

	return &SturdycStore[T]{client: client}, nil
}

func (s *SturdycStore[T]) Get(_ context.Context, key string) (T, bool, error) {
	value, ok := s.client.Get(key)
	return value, ok, nil
}

func (s *SturdycStore[T]) Set(_ context.Context, key string, value T) error {
	s.client.Set(key, value)
	return nil
}

func (s *SturdycStore[T]) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}
