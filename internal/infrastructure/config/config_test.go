package config

import (
	"context"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://127.0.0.1:8888" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.Session.Backend != "file" || cfg.Session.File != ".talodu/session.json" {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Redis.KeyPrefix != "talodu:session" {
		t.Fatalf("Redis.KeyPrefix = %q", cfg.Redis.KeyPrefix)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.talodu.com")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "https://api.talodu.com" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Session.Backend != "redis" || cfg.Redis.Addr != "redis.internal:6379" {
		t.Fatalf("redis settings not applied: %+v %+v", cfg.Session, cfg.Redis)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}
