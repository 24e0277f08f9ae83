package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/talodu/marketplace-client/internal/core/domain"
	"github.com/talodu/marketplace-client/internal/mockapi"
	"github.com/talodu/marketplace-client/pkg/logger"
)

type config struct {
	Addr       string        `env:"ADDR,        default=:8888"`
	JWTSecret  string        `env:"JWT_SECRET,  default=dev-only-secret"`
	AccessTTL  time.Duration `env:"ACCESS_TTL,  default=15m"`
	RefreshTTL time.Duration `env:"REFRESH_TTL, default=168h"`
	LogLevel   string        `env:"LOG_LEVEL,   default=info"`
	Env        string        `env:"ENV,         default=development"`
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		logger.Init(logger.Options{})
		log := logger.Get()
		log.Fatal().Err(err).Msg("loading configuration")
	}

	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	log := logger.Get()

	srv := mockapi.New(mockapi.Config{
		JWTSecret:  cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		Metrics:    true,
	})
	seed(srv)

	go func() {
		if err := srv.Start(cfg.Addr); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("addr", cfg.Addr).Msg("mock marketplace API listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seed registers a couple of demo accounts so a freshly started server
// is usable without any setup.
func seed(srv *mockapi.Server) {
	adminID, _ := srv.SeedUser("admin@talodu.com", "admin123", domain.User{
		Username:  "admin",
		FirstName: "Ada",
		LastName:  "Admin",
		Email:     "admin@talodu.com",
		Roles: []domain.Role{
			{ID: 1, Name: domain.RoleAdmin},
			{ID: 2, Name: domain.RoleSuperAdmin},
		},
	})
	sellerID, _ := srv.SeedUser("seller@talodu.com", "seller123", domain.User{
		Username:  "seller",
		FirstName: "Sam",
		LastName:  "Seller",
		Email:     "seller@talodu.com",
		Roles:     []domain.Role{{ID: 3, Name: "Seller"}},
	})

	srv.SeedShop(domain.Shop{
		Name:        "Ada's Antiques",
		Description: "Curiosities and collectibles",
		City:        "Lisbon",
		OwnerID:     adminID,
	})
	srv.SeedShop(domain.Shop{
		Name:    "Sam's Surplus",
		City:    "Porto",
		OwnerID: sellerID,
		Employees: []domain.User{
			{ID: adminID, Username: "admin"},
		},
	})
}
