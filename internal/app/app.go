// Package app assembles a ready-to-use marketplace client from
// configuration: credential store per backend, auth exchanges, session
// manager, retry transport, and the typed API clients.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/talodu/marketplace-client/internal/api/client"
	"github.com/talodu/marketplace-client/internal/api/transport"
	"github.com/talodu/marketplace-client/internal/core/ports"
	"github.com/talodu/marketplace-client/internal/core/service"
	"github.com/talodu/marketplace-client/internal/infrastructure/config"
	"github.com/talodu/marketplace-client/internal/infrastructure/credstore"
	"github.com/talodu/marketplace-client/internal/infrastructure/credstore/redisstore"
	"github.com/talodu/marketplace-client/pkg/logger"
)

// App is the assembled client. The session is already hydrated when
// FromConfig returns; check Manager.State() for the restored identity.
type App struct {
	Config  *config.Config
	Store   ports.CredentialStore
	Manager *service.SessionManager
	Client  *client.Client

	redis *redis.Client
}

// Load reads configuration from the environment and assembles the client.
func Load(ctx context.Context) (*App, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	return FromConfig(ctx, cfg)
}

// FromConfig assembles the client from an explicit configuration. The
// credential store backend is selected by cfg.Session.Backend; "redis"
// connects eagerly so a misconfigured backend fails here, not on first
// use.
func FromConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	a := &App{Config: cfg}

	switch cfg.Session.Backend {
	case "", "file":
		a.Store = credstore.NewFileStore(cfg.Session.File)
	case "redis":
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("app: session backend: %w", err)
		}
		a.redis = rdb
		a.Store = redisstore.NewStore(rdb, cfg.Redis.KeyPrefix)
	default:
		return nil, fmt.Errorf("app: unknown session backend %q", cfg.Session.Backend)
	}

	// The auth exchanges use a plain client so a 401 from /refresh can
	// never recurse into the retry transport.
	auth := service.NewAuthService(cfg.APIBaseURL, &http.Client{Timeout: cfg.RequestTimeout})
	a.Manager = service.NewSessionManager(a.Store, auth)

	httpClient := &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: transport.New(nil, a.Manager, a.Manager),
	}
	a.Client = client.New(cfg.APIBaseURL, httpClient)

	a.Manager.Hydrate()
	return a, nil
}

// Close releases the redis connection when that backend is in use.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
