// Package config holds the typed runtime configuration. Values load from
// environment variables (ATLAS_ prefix, plus the bare rate-limit names the
// deployment already uses) over code defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RateLimitConfig controls the HTTP and WebSocket limiters.
type RateLimitConfig struct {
	HTTPLimit     int
	HTTPWindow    time.Duration
	WSLimit       int
	WSWindow      time.Duration
	ExcludedPaths []string
}

// CacheConfig bounds the per-user mail caches.
type CacheConfig struct {
	MaxEntriesPerUser int
	MaxUsers          int
}

// RedisConfig points at the shared counting store. With Enabled false the
// server falls back to an in-process store (single-node only).
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Username string
	Password string
	DB       int
}

// LLMConfig configures the planner/router model.
type LLMConfig struct {
	Model          string
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
	MaxRetries     int
}

// Config is the full server configuration.
type Config struct {
	Port           int
	Environment    string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	LLM            LLMConfig
	Redis          RedisConfig
	RateLimit      RateLimitConfig
	Cache          CacheConfig
}

// Load reads configuration from the given viper instance, applying defaults
// and environment bindings. Pass viper.New() outside of tests.
func Load(v *viper.Viper) (Config, error) {
	v.SetDefault("port", 8080)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout_seconds", 120)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rate_limit.http_limit", 60)
	v.SetDefault("rate_limit.http_window_seconds", 60)
	v.SetDefault("rate_limit.ws_limit", 10)
	v.SetDefault("rate_limit.ws_window_seconds", 60)
	v.SetDefault("cache.max_entries_per_user", 1000)
	v.SetDefault("cache.max_users", 1000)

	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The deployment's existing names take precedence over the prefixed form.
	bindings := map[string]string{
		"rate_limit.http_limit":          "HTTP_RATE_LIMIT",
		"rate_limit.http_window_seconds": "HTTP_WINDOW_SECONDS",
		"rate_limit.ws_limit":            "WS_RATE_LIMIT",
		"rate_limit.ws_window_seconds":   "WS_WINDOW_SECONDS",
		"llm.api_key":                    "OPENAI_API_KEY",
		"redis.addr":                     "REDIS_ADDR",
		"redis.username":                 "REDIS_USERNAME",
		"redis.password":                 "REDIS_PASSWORD",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := Config{
		Port:           v.GetInt("port"),
		Environment:    v.GetString("environment"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		AllowedOrigins: v.GetStringSlice("allowed_origins"),
		LLM: LLMConfig{
			Model:          v.GetString("llm.model"),
			APIKey:         v.GetString("llm.api_key"),
			BaseURL:        v.GetString("llm.base_url"),
			TimeoutSeconds: v.GetInt("llm.timeout_seconds"),
			MaxRetries:     v.GetInt("llm.max_retries"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Username: v.GetString("redis.username"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			HTTPLimit:     v.GetInt("rate_limit.http_limit"),
			HTTPWindow:    time.Duration(v.GetInt("rate_limit.http_window_seconds")) * time.Second,
			WSLimit:       v.GetInt("rate_limit.ws_limit"),
			WSWindow:      time.Duration(v.GetInt("rate_limit.ws_window_seconds")) * time.Second,
			ExcludedPaths: []string{"/docs", "/openapi.json", "/health"},
		},
		Cache: CacheConfig{
			MaxEntriesPerUser: v.GetInt("cache.max_entries_per_user"),
			MaxUsers:          v.GetInt("cache.max_users"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RateLimit.HTTPLimit <= 0 || c.RateLimit.WSLimit <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.RateLimit.HTTPWindow <= 0 || c.RateLimit.WSWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}
	if c.Cache.MaxEntriesPerUser <= 0 || c.Cache.MaxUsers <= 0 {
		return fmt.Errorf("cache bounds must be positive")
	}
	return nil
}
