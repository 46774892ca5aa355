package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type post struct {
	ID    string
	Title string
}

func TestConfig_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultTTL, cfg.TTL)
	assert.Equal(t, 60*time.Second, cfg.TTL)
	require.NoError(t, cfg.Validate())

	// zero values fall back to defaults
	require.NoError(t, Config{}.Validate())

	assert.Error(t, Config{EvictionPercentage: 200}.Validate())
	assert.Error(t, Config{TTL: -time.Second}.Validate())
}

func TestNewMemory(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemory[post](Config{TTL: time.Minute})
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "app:post:1", post{ID: "1", Title: "hello"}))

	got, ok, err := c.Get(ctx, "app:post:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, post{ID: "1", Title: "hello"}, got)

	require.NoError(t, c.Delete(ctx, "app:post:1"))
	_, ok, err = c.Get(ctx, "app:post:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewMemory_InvalidConfig(t *testing.T) {
	_, err := NewMemory[post](Config{Capacity: -1})
	assert.Error(t, err)
}

func TestNewRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c, err := NewRedis[post](client, RedisConfig{Prefix: "cleanarch", Version: "1"})
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "app:post:1", post{ID: "1", Title: "hello"}))
	assert.True(t, mr.Exists("cleanarch:1:app:post:1"))
	assert.Equal(t, DefaultTTL, mr.TTL("cleanarch:1:app:post:1"))

	got, ok, err := c.Get(ctx, "app:post:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Title)

	_, err = NewRedis[post](client, RedisConfig{})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	c := Nop[post]()

	require.NoError(t, c.Set(ctx, "k", post{ID: "1"}))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, post{}, got)
	assert.NoError(t, c.Delete(ctx, "k"))
}
