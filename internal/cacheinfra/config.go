package cacheinfra

import (
	"time"

	"github.com/viccon/sturdyc"
)

// DefaultTTL is how long entries live unless configured otherwise.
const DefaultTTL = 60 * time.Second

// Config holds the sturdyc settings for the in-memory store.
type Config struct {
	// Capacity is the maximum number of entries. Must be greater than 0.
	Capacity int

	// NumShards controls lock striping inside sturdyc. Must be greater than 0.
	NumShards int

	// TTL applies to every entry written through the store.
	TTL time.Duration

	// EvictionPercentage is the share of entries dropped when the store is
	// full. Must be between 1 and 100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are swept. Zero keeps
	// the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                DefaultTTL,
		EvictionPercentage: 10,
	}
}

func (c Config) options() []sturdyc.Option {
	var opts []sturdyc.Option
	if c.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return opts
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}
	return nil
}

// RedisConfig configures the redis store.
type RedisConfig struct {
	TTL     time.Duration
	Prefix  string
	Version string
}

// Validate reports the first invalid field.
func (c RedisConfig) Validate() error {
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.Prefix == "" {
		return &ConfigError{Field: "Prefix", Message: "is required"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
