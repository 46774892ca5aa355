// Package config loads the server configuration from an optional YAML file
// and CLEANARCH_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-clean-arch/cache"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. CLEANARCH_DATABASE_DSN.
const EnvPrefix = "CLEANARCH"

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all application configuration.
type Config struct {
	Environment string          `mapstructure:"environment"`
	Language    string          `mapstructure:"language"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	GraphiQL     bool          `mapstructure:"graphiql"`
}

// DatabaseConfig selects the driver and DSN. Driver is one of sqlite3,
// postgres (lib/pq) or pgx.
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"`
	DSN            string `mapstructure:"dsn"`
	MigrationsPath string `mapstructure:"migrations_path"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`
	// Debug logs every query.
	Debug bool `mapstructure:"debug"`
}

type CacheConfig struct {
	Backend string           `mapstructure:"backend"`
	Memory  cache.Config     `mapstructure:"memory"`
	Redis   RedisCacheConfig `mapstructure:"redis"`
}

type RedisCacheConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	cache.RedisConfig `mapstructure:",squash"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig enables OTLP tracing when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads path, or ./config.yaml when path is empty, and applies the
// environment on top. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("language", "en")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.graphiql", true)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "file:cleanarch.db?_foreign_keys=on")
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.debug", false)

	def := cache.DefaultConfig()
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.memory.ttl", def.TTL.String())
	v.SetDefault("cache.memory.capacity", def.Capacity)
	v.SetDefault("cache.memory.num_shards", def.NumShards)
	v.SetDefault("cache.memory.eviction_percentage", def.EvictionPercentage)
	v.SetDefault("cache.memory.eviction_interval", "0s")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.ttl", cache.DefaultTTL.String())
	v.SetDefault("cache.redis.prefix", "cleanarch")
	v.SetDefault("cache.redis.version", "v1")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "go-clean-arch")
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server.address is required")
	}

	if !slices.Contains([]string{"sqlite3", "postgres", "pgx"}, c.Database.Driver) {
		return fmt.Errorf("database.driver must be one of: sqlite3, postgres, pgx (got %q)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}

	switch c.Cache.Backend {
	case CacheMemory:
		if err := c.Cache.Memory.Validate(); err != nil {
			return fmt.Errorf("cache.memory: %w", err)
		}
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New("cache.redis.addr is required")
		}
		if c.Cache.Redis.Prefix == "" {
			return errors.New("cache.redis.prefix is required")
		}
	case CacheNone:
	default:
		return fmt.Errorf("cache.backend must be one of: memory, redis, none (got %q)", c.Cache.Backend)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error (got %q)", c.Logging.Level)
	}
	if !slices.Contains([]string{"json", "console"}, c.Logging.Format) {
		return fmt.Errorf("logging.format must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}
