// Package di wires the layers of a resource: database, cached repository and
// the view factory serving it.
package di

import (
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/goliatone/go-clean-arch/cache"
	"github.com/goliatone/go-clean-arch/database"
	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/interactor"
	"github.com/goliatone/go-clean-arch/metrics"
	"github.com/goliatone/go-clean-arch/presentation"
	"github.com/goliatone/go-clean-arch/repository"
	"github.com/goliatone/go-clean-arch/serializer"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Wiring errors.
var (
	ErrDBRequired         = errors.New("di: database is required")
	ErrRedisRequired      = errors.New("di: redis client is required")
	ErrSerializerRequired = errors.New("di: serializer is required")
)

// Container holds the dependencies shared by every resource.
type Container struct {
	db       *bun.DB
	app      string
	logger   *zap.Logger
	metrics  *metrics.Metrics
	tracer   trace.TracerProvider
	language *language.Tag

	cacheBackend string
	memory       cache.Config
	redis        redis.UniversalClient
	redisConfig  cache.RedisConfig
}

// Option configures a Container.
type Option func(*Container)

// WithApp namespaces database names, and so cache keys, under app.
func WithApp(app string) Option {
	return func(c *Container) {
		c.app = app
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Container) {
		c.metrics = m
	}
}

// WithTracerProvider traces every interactor with tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Container) {
		c.tracer = tp
	}
}

// WithLanguage sets the default language of presenter messages.
func WithLanguage(tag language.Tag) Option {
	return func(c *Container) {
		c.language = &tag
	}
}

// WithMemoryCache caches entities in process. This is the default.
func WithMemoryCache(cfg cache.Config) Option {
	return func(c *Container) {
		c.cacheBackend = "memory"
		c.memory = cfg
	}
}

// WithRedisCache caches entities in redis.
func WithRedisCache(client redis.UniversalClient, cfg cache.RedisConfig) Option {
	return func(c *Container) {
		c.cacheBackend = "redis"
		c.redis = client
		c.redisConfig = cfg
	}
}

// WithoutCache disables caching.
func WithoutCache() Option {
	return func(c *Container) {
		c.cacheBackend = "none"
	}
}

// NewContainer creates a Container over db.
func NewContainer(db *bun.DB, opts ...Option) (*Container, error) {
	if db == nil {
		return nil, ErrDBRequired
	}

	c := &Container{
		db:           db,
		logger:       zap.NewNop(),
		cacheBackend: "memory",
		memory:       cache.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}

	switch c.cacheBackend {
	case "memory":
		if err := c.memory.Validate(); err != nil {
			return nil, err
		}
	case "redis":
		if c.redis == nil {
			return nil, ErrRedisRequired
		}
	}
	return c, nil
}

// DB returns the shared database handle.
func (c *Container) DB() *bun.DB {
	return c.db
}

func (c *Container) Logger() *zap.Logger {
	return c.logger
}

func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Resource is the stack serving one model/entity pair.
type Resource[M any, E entity.Entity] struct {
	Database   *database.Database[M, E]
	Repository *repository.Repository[E]
	Factory    *presentation.Factory[E]
}

// ResourceConfig names a resource and how its rows become entities.
type ResourceConfig[M any, E entity.Entity] struct {
	// Name overrides the database name derived from the model type.
	Name       string
	Decode     database.Decoder[M, E]
	Serializer *serializer.Serializer[E]
}

// NewResource builds the database, repository and view factory for M and
// E. Since Go methods cannot have type parameters, this is provided as a
// package-level function.
func NewResource[M any, E entity.Entity](c *Container, cfg ResourceConfig[M, E]) (*Resource[M, E], error) {
	if cfg.Serializer == nil {
		return nil, ErrSerializerRequired
	}

	dbOpts := []database.Option{database.WithLogger(c.logger)}
	if c.app != "" {
		dbOpts = append(dbOpts, database.WithApp(c.app))
	}
	if cfg.Name != "" {
		dbOpts = append(dbOpts, database.WithName(cfg.Name))
	}

	db, err := database.New[M, E](c.db, cfg.Decode, dbOpts...)
	if err != nil {
		return nil, err
	}

	store, err := newCache[E](c)
	if err != nil {
		return nil, err
	}

	repo := repository.New[E](db,
		repository.WithCache(store),
		repository.WithLogger[E](c.logger),
		repository.WithMetrics[E](c.metrics),
	)

	presenterOpts := []presentation.Option{
		presentation.WithLogger(c.logger),
		presentation.WithMetrics(c.metrics, db.String()),
	}
	if c.language != nil {
		presenterOpts = append(presenterOpts, presentation.WithLanguage(*c.language))
	}

	factory := presentation.NewFactory[E](repo, cfg.Serializer, presenterOpts...)
	if c.tracer != nil {
		factory = factory.WithInteractorOptions(interactor.WithTracerProvider(c.tracer))
	}

	return &Resource[M, E]{
		Database:   db,
		Repository: repo,
		Factory:    factory,
	}, nil
}

func newCache[E any](c *Container) (cache.Cache[E], error) {
	switch c.cacheBackend {
	case "redis":
		return cache.NewRedis[E](c.redis, c.redisConfig)
	case "none":
		return cache.Nop[E](), nil
	default:
		return cache.NewMemory[E](c.memory)
	}
}
