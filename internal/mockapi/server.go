// Package mockapi is an in-memory stand-in for the marketplace backend.
// It mirrors the real API's auth behaviour — bcrypt-checked logins,
// short-lived HS256 access tokens, rotating refresh tokens, 401 on
// expiry — so the session manager and retry transport can be exercised
// end to end without a deployed backend. Integration tests mount it
// under httptest; cmd/mockapi runs it standalone.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/talodu/marketplace-client/internal/core/domain"
	"github.com/talodu/marketplace-client/pkg/logger"
)

// Config controls token issuance. A short AccessTTL is the lever tests
// use to force expiry.
type Config struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Metrics enables the echoprometheus middleware and /metrics route.
	// Off by default so parallel tests don't fight over the default
	// Prometheus registry.
	Metrics bool
}

type account struct {
	user         domain.User
	passwordHash []byte
}

// Server is the mock marketplace API. It implements http.Handler.
type Server struct {
	e   *echo.Echo
	cfg Config

	mu       sync.Mutex
	accounts map[string]*account // keyed by email
	refresh  map[uint]string     // userID -> current refresh token (rotated)
	shops    []domain.Shop
	settings domain.GlobalSettings
	nextID   uint

	loginCalls   atomic.Int64
	refreshCalls atomic.Int64
}

// New builds the server with empty state. Seed users before serving.
func New(cfg Config) *Server {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "mockapi-secret"
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}

	s := &Server{
		cfg:      cfg,
		accounts: make(map[string]*account),
		refresh:  make(map[uint]string),
		nextID:   1,
		settings: domain.GlobalSettings{
			ID:       1,
			SiteName: "Talodu",
			Currency: "USD",
			DisplaySettings: domain.DisplaySettings{
				ShowAllProducts:       true,
				FeaturedProductsTitle: "Featured",
				FeaturedProductsCount: 8,
			},
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()
	e.HTTPErrorHandler = httpErrorHandler
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if cfg.Metrics {
		e.Use(echoprometheus.NewMiddleware("talodu_mockapi"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	e.POST("/login", s.handleLogin)
	e.POST("/refresh", s.handleRefresh)
	e.GET("/health", s.handleHealth)

	authed := e.Group("", s.auth)
	authed.GET("/users/me", s.handleMe)
	authed.GET("/shops", s.handleListShops)
	authed.POST("/shops", s.handleCreateShop)
	authed.GET("/api/admin/settings", s.handleGetSettings, requireRole(domain.RoleAdmin, domain.RoleSuperAdmin))
	authed.PUT("/api/admin/settings", s.handleUpdateSettings, requireRole(domain.RoleAdmin, domain.RoleSuperAdmin))

	s.e = e
	return s
}

// ServeHTTP implements http.Handler so the server mounts directly under
// httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Start runs the server standalone on addr.
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Shutdown stops a standalone server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// SeedUser registers an account with a bcrypt-hashed password and
// returns the assigned user ID.
func (s *Server) SeedUser(email, password string, user domain.User) (uint, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return 0, fmt.Errorf("mockapi: hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = s.nextID
		s.nextID++
	} else if user.ID >= s.nextID {
		s.nextID = user.ID + 1
	}
	user.Email = email
	s.accounts[email] = &account{user: user, passwordHash: hash}
	return user.ID, nil
}

// SeedShop adds a shop to the in-memory catalog.
func (s *Server) SeedShop(shop domain.Shop) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if shop.ID == 0 {
		shop.ID = s.nextID
		s.nextID++
	}
	s.shops = append(s.shops, shop)
	return shop.ID
}

// LoginCalls reports how many login exchanges the server has handled.
func (s *Server) LoginCalls() int64 { return s.loginCalls.Load() }

// RefreshCalls reports how many refresh exchanges the server has
// handled. Tests use it to assert coalescing.
func (s *Server) RefreshCalls() int64 { return s.refreshCalls.Load() }

// httpErrorHandler renders every error as the API's canonical
// {"error": "<message>"} envelope.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprintf("%v", he.Message)
	} else {
		log := logger.Get()
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled mockapi error")
	}

	_ = c.JSON(code, map[string]string{"error": msg})
}
