package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goliatone/go-clean-arch/config"
	"github.com/goliatone/go-clean-arch/graph"
	"github.com/goliatone/go-clean-arch/internal/dbconn"
	"github.com/goliatone/go-clean-arch/internal/logging"
	"github.com/goliatone/go-clean-arch/internal/posts"
	"github.com/goliatone/go-clean-arch/internal/telemetry"
	"github.com/goliatone/go-clean-arch/metrics"
	"github.com/goliatone/go-clean-arch/pkg/di"
	"github.com/goliatone/go-clean-arch/presentation"
	"github.com/goliatone/go-clean-arch/rest"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Telemetry.ServiceName)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := dbconn.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := []di.Option{
		di.WithLogger(logger),
		di.WithMetrics(m),
		di.WithTracerProvider(otel.GetTracerProvider()),
		di.WithLanguage(presentation.MatchLanguage(cfg.Language)),
	}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		defer client.Close()
		opts = append(opts, di.WithRedisCache(client, cfg.Cache.Redis.RedisConfig))
	case config.CacheNone:
		opts = append(opts, di.WithoutCache())
	default:
		opts = append(opts, di.WithMemoryCache(cfg.Cache.Memory))
	}

	container, err := di.NewContainer(db, opts...)
	if err != nil {
		return err
	}

	postResource, err := posts.NewResource(container)
	if err != nil {
		return err
	}

	registry := graph.NewRegistry()
	postSchema, err := posts.Register(registry, postResource.Factory)
	if err != nil {
		return err
	}
	schema, err := graph.Schema(graph.SchemaConfig{
		Registry:  registry,
		Queries:   postSchema.Queries,
		Mutations: postSchema.Mutations,
	})
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", withLanguage(graph.NewHandler(schema, cfg.Server.GraphiQL)))
	mux.Handle("/api/posts/", http.StripPrefix("/api/posts", rest.NewHandler(postResource.Factory,
		rest.WithLogger(logger),
		rest.WithMetrics(m),
	)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("address", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// withLanguage negotiates Accept-Language for GraphQL requests.
func withLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accept := r.Header.Get("Accept-Language"); accept != "" {
			tag := presentation.MatchLanguage(accept)
			r = r.WithContext(presentation.ContextWithLanguage(r.Context(), tag))
		}
		next.ServeHTTP(w, r)
	})
}
