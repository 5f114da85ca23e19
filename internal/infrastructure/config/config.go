package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Rewrite   RewriteConfig
	Fetch     FetchConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// RewriteConfig holds resource rewriting configuration.
type RewriteConfig struct {
	// System-wide defaults; containers may override via the containers file.
	ProxyBase      string `envconfig:"PROXY_BASE" default:"http://localhost:8080/proxy"`
	ConcatBase     string `envconfig:"CONCAT_BASE" default:"http://localhost:8080/concat"`
	ContainersFile string `envconfig:"CONTAINERS_FILE" default:""`
	CacheCapacity  int    `envconfig:"SANDBOX_CACHE_CAPACITY" default:"1000"`
}

// FetchConfig holds resource fetcher configuration.
type FetchConfig struct {
	TimeoutSeconds int   `envconfig:"FETCH_TIMEOUT" default:"30"`
	MaxBodyBytes   int64 `envconfig:"FETCH_MAX_BODY" default:"10485760"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
		Rewrite: RewriteConfig{
			ProxyBase:     "http://localhost:8080/proxy",
			ConcatBase:    "http://localhost:8080/concat",
			CacheCapacity: 1000,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
			MaxBodyBytes:   10 * 1024 * 1024,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
