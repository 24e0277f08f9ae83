package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// APIBaseURL is the root of the remote marketplace API.
	APIBaseURL string `env:"API_BASE_URL, default=http://127.0.0.1:8888"`
	Env        string `env:"ENV,          default=development"`
	LogLevel   string `env:"LOG_LEVEL,    default=info"`

	// RequestTimeout bounds every intercepted API call, refresh included.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=30s"`

	Session SessionConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	// File is where the credential pair and user snapshot persist between
	// runs. Ignored when Backend is "redis".
	File    string `env:"SESSION_FILE, default=.talodu/session.json"`
	Backend string `env:"SESSION_BACKEND, default=file"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
	// KeyPrefix namespaces the stored session so several clients can
	// share one Redis instance.
	KeyPrefix string `env:"REDIS_KEY_PREFIX, default=talodu:session"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
