package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": strings.Repeat("k", 32),
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"localhost:11211"}, cfg.Memcached.Addrs)
	assert.True(t, cfg.Postgres.MigrateOnStart)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.WeakSecret())
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "secret",
		"JWT_TTL":        "15m",
		"STORAGE_DRIVER": "mongo",
		"CACHE_DRIVER":   "memcached",
		"MEMCACHED_ADDR": "mc1:11211,mc2:11211",
		"ENV":            "production",
	}))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Auth.JWTTTL)
	assert.Equal(t, StorageDriverMongo, cfg.Storage.Driver)
	assert.Equal(t, []string{"mc1:11211", "mc2:11211"}, cfg.Memcached.Addrs)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.WeakSecret())
}

func TestValidate(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORAGE_DRIVER": "sqlite",
		"CACHE_DRIVER":   "disk",
	}))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), `unknown STORAGE_DRIVER "sqlite"`)
	assert.Contains(t, err.Error(), `unknown CACHE_DRIVER "disk"`)
}

func TestLoadWith_BadDuration(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"CACHE_TTL": "soon",
	}))
	assert.Error(t, err)
}
