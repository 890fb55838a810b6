package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Resolver  ResolverConfig
	Dedup     DedupConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ResolverConfig holds the shared confidence thresholds. Every resolving
// component reads this one pair so production and evaluation cannot drift.
type ResolverConfig struct {
	HighConfidence   float64       `mapstructure:"high_confidence"`
	MediumConfidence float64       `mapstructure:"medium_confidence"`
	LookupTimeout    time.Duration `mapstructure:"lookup_timeout"`
}

// DedupConfig holds offline deduplication configuration
type DedupConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

// CacheConfig holds match-cache configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// DatabaseConfig holds catalog store configuration. An empty URL selects the
// in-memory catalog (development only).
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pantrybase/")

	// Environment variable settings, e.g. PANTRYBASE_CACHE_TYPE=redis
	v.SetEnvPrefix("PANTRYBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Resolver defaults
	v.SetDefault("resolver.high_confidence", 0.85)
	v.SetDefault("resolver.medium_confidence", 0.5)
	v.SetDefault("resolver.lookup_timeout", "5s")

	// Dedup defaults
	v.SetDefault("dedup.similarity_threshold", 0.90)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "720h") // 30 days for auto-derived rows

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Log defaults
	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	r := config.Resolver
	if r.MediumConfidence <= 0 || r.MediumConfidence >= 1 {
		return fmt.Errorf("resolver medium confidence must be in (0,1), got: %v", r.MediumConfidence)
	}
	if r.HighConfidence <= r.MediumConfidence || r.HighConfidence > 1 {
		return fmt.Errorf("resolver high confidence must be in (medium,1], got: %v", r.HighConfidence)
	}

	if t := config.Dedup.SimilarityThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("dedup similarity threshold must be in (0,1], got: %v", t)
	}

	return nil
}
