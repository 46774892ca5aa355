package cache

import (
	"time"

	"github.com/goliatone/go-clean-arch/internal/cacheinfra"
)

// DefaultTTL is the lifetime of cached entities when no TTL is configured.
const DefaultTTL = cacheinfra.DefaultTTL

// Config exposes the in-memory cache options.
type Config struct {
	TTL                time.Duration `mapstructure:"ttl"`
	Capacity           int           `mapstructure:"capacity"`
	NumShards          int           `mapstructure:"num_shards"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
	EvictionInterval   time.Duration `mapstructure:"eviction_interval"`
}

// RedisConfig exposes the redis cache options. Keys are written as
// "<prefix>:<version>:<key>".
type RedisConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
	Version string        `mapstructure:"version"`
}

func (c RedisConfig) ttl() time.Duration {
	if c.TTL == 0 {
		return DefaultTTL
	}
	return c.TTL
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// toInternal fills zero values from the defaults so a partially populated
// Config stays usable.
func (c Config) toInternal() cacheinfra.Config {
	def := cacheinfra.DefaultConfig()
	out := cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
	if out.Capacity == 0 {
		out.Capacity = def.Capacity
	}
	if out.NumShards == 0 {
		out.NumShards = def.NumShards
	}
	if out.TTL == 0 {
		out.TTL = def.TTL
	}
	if out.EvictionPercentage == 0 {
		out.EvictionPercentage = def.EvictionPercentage
	}
	return out
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		TTL:                cfg.TTL,
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
