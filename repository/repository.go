// Package repository sits between interactors and a Database, serving Get
// through a cache and dropping cached entries after writes.
package repository

import (
	"context"
	"fmt"

	"github.com/goliatone/go-clean-arch/cache"
	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/metrics"
	bunrepo "github.com/goliatone/go-repository-bun"
	"go.uber.org/zap"
)

// Database is the storage contract a Repository delegates to. String must
// identify the database, it prefixes every cache key.
type Database[E any] interface {
	fmt.Stringer
	Create(ctx context.Context, fields entity.Fields) (E, error)
	Update(ctx context.Context, fields entity.Fields) (E, error)
	Get(ctx context.Context, id string) (E, error)
	Filter(ctx context.Context, forceAll bool, filters entity.Fields, criteria ...bunrepo.SelectCriteria) ([]E, error)
	Delete(ctx context.Context, id string) (E, error)
	Reactivate(ctx context.Context, id string) (E, error)
}

// Repository serves entities of type E.
type Repository[E any] struct {
	db      Database[E]
	cache   cache.Cache[E]
	keys    cache.KeySerializer
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Repository.
type Option[E any] func(*Repository[E])

// WithCache sets the cache used by Get. Defaults to cache.Nop.
func WithCache[E any](c cache.Cache[E]) Option[E] {
	return func(r *Repository[E]) {
		if c != nil {
			r.cache = c
		}
	}
}

func WithLogger[E any](logger *zap.Logger) Option[E] {
	return func(r *Repository[E]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics[E any](m *metrics.Metrics) Option[E] {
	return func(r *Repository[E]) {
		r.metrics = m
	}
}

// New creates a Repository over db.
func New[E any](db Database[E], opts ...Option[E]) *Repository[E] {
	r := &Repository[E]{
		db:     db,
		cache:  cache.Nop[E](),
		keys:   cache.NewKeySerializer(cache.EntitySeparator),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("database", db.String()))
	return r
}

// Key returns the cache key for id, "<database>:<id>".
func (r *Repository[E]) Key(id string) string {
	return r.keys.SerializeKey(r.db.String(), id)
}

// Create stores a new entity.
func (r *Repository[E]) Create(ctx context.Context, fields entity.Fields) (E, error) {
	return r.db.Create(ctx, fields)
}

// Get returns the cached entity for id, loading and caching it on a miss.
// Cache failures are logged and treated as misses.
func (r *Repository[E]) Get(ctx context.Context, id string) (E, error) {
	key := r.Key(id)

	cached, ok, err := r.cache.Get(ctx, key)
	switch {
	case err != nil:
		r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		r.metrics.RecordCacheLookup(r.db.String(), metrics.CacheError)
	case ok:
		r.metrics.RecordCacheLookup(r.db.String(), metrics.CacheHit)
		return cached, nil
	default:
		r.metrics.RecordCacheLookup(r.db.String(), metrics.CacheMiss)
	}

	e, err := r.db.Get(ctx, id)
	if err != nil {
		var zero E
		return zero, err
	}

	if err := r.cache.Set(ctx, key, e); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return e, nil
}

// All lists entities matching filters, soft-deleted ones only when forceAll
// is set.
func (r *Repository[E]) All(ctx context.Context, forceAll bool, filters entity.Fields, criteria ...bunrepo.SelectCriteria) ([]E, error) {
	return r.db.Filter(ctx, forceAll, filters, criteria...)
}

// Update applies fields to the entity identified by fields["id"].
func (r *Repository[E]) Update(ctx context.Context, fields entity.Fields) (E, error) {
	e, err := r.db.Update(ctx, fields)
	if err != nil {
		return e, err
	}
	if id, ok := fields["id"]; ok && id != nil {
		r.invalidate(ctx, fmt.Sprint(id))
	}
	return e, nil
}

// Delete soft-deletes the entity.
func (r *Repository[E]) Delete(ctx context.Context, id string) (E, error) {
	e, err := r.db.Delete(ctx, id)
	if err != nil {
		return e, err
	}
	r.invalidate(ctx, id)
	return e, nil
}

// Reactivate restores a soft-deleted entity.
func (r *Repository[E]) Reactivate(ctx context.Context, id string) (E, error) {
	e, err := r.db.Reactivate(ctx, id)
	if err != nil {
		return e, err
	}
	r.invalidate(ctx, id)
	return e, nil
}

func (r *Repository[E]) invalidate(ctx context.Context, id string) {
	if id == "" {
		return
	}
	key := r.Key(id)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		return
	}
	r.metrics.RecordCacheInvalidation(r.db.String())
}
