package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 0.85, cfg.Resolver.HighConfidence)
	assert.Equal(t, 0.5, cfg.Resolver.MediumConfidence)
	assert.Equal(t, 5*time.Second, cfg.Resolver.LookupTimeout)
	assert.Equal(t, 0.90, cfg.Dedup.SimilarityThreshold)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 720*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 100, cfg.RateLimit.PerIP)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PANTRYBASE_SERVER_PORT", "9090")
	t.Setenv("PANTRYBASE_RESOLVER_HIGH_CONFIDENCE", "0.9")
	t.Setenv("PANTRYBASE_DEDUP_SIMILARITY_THRESHOLD", "0.75")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 0.9, cfg.Resolver.HighConfidence)
	assert.Equal(t, 0.75, cfg.Dedup.SimilarityThreshold)
}

func TestLoadRejectsRedisWithoutURL(t *testing.T) {
	t.Setenv("PANTRYBASE_CACHE_TYPE", "redis")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Resolver: ResolverConfig{HighConfidence: 0.85, MediumConfidence: 0.5},
			Dedup:    DedupConfig{SimilarityThreshold: 0.9},
			Cache:    CacheConfig{Type: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"unknown cache type", func(c *Config) { c.Cache.Type = "memcached" }, true},
		{"redis without url", func(c *Config) { c.Cache.Type = "redis" }, true},
		{"redis with url", func(c *Config) {
			c.Cache.Type = "redis"
			c.Cache.RedisURL = "redis://localhost:6379/0"
		}, false},
		{"medium confidence at zero", func(c *Config) { c.Resolver.MediumConfidence = 0 }, true},
		{"medium confidence at one", func(c *Config) { c.Resolver.MediumConfidence = 1 }, true},
		{"high below medium", func(c *Config) { c.Resolver.HighConfidence = 0.3 }, true},
		{"high above one", func(c *Config) { c.Resolver.HighConfidence = 1.1 }, true},
		{"dedup threshold at zero", func(c *Config) { c.Dedup.SimilarityThreshold = 0 }, true},
		{"dedup threshold above one", func(c *Config) { c.Dedup.SimilarityThreshold = 1.01 }, true},
		{"dedup threshold at one", func(c *Config) { c.Dedup.SimilarityThreshold = 1.0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
