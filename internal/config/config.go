// Package config loads application configuration from the environment.
//
// Every setting is an env var with a sane default, declared once as a
// struct tag instead of scattered os.Getenv calls. A .env file in the
// working directory is loaded first if present, which keeps local
// development out of the shell profile.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting the server needs.
type Config struct {
	Port   int    `envconfig:"PORT" default:"3000"`
	DBPath string `envconfig:"DB_PATH" default:"data/proelevate.db"`

	// Cache. Empty RedisAddr selects the in-memory cache backend.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"1h"`

	// Event bus. Comma-separated broker list; empty disables publishing.
	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"like_events"`

	// Auth. Empty secret disables token verification (open API).
	JWTSecret string `envconfig:"JWT_SECRET"`
}

// Load reads the .env file (if any) and the process environment.
func Load() (*Config, error) {
	// Missing .env is fine — production sets real env vars.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: reading environment: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid PORT %d", cfg.Port)
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least 16 characters")
	}

	return &cfg, nil
}

// Brokers splits the comma-separated KAFKA_BROKERS value.
func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
