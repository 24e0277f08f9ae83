package mockapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user,omitempty"`
	ExpiresIn    int          `json:"expires_in"`
}

func (s *Server) handleLogin(c echo.Context) error {
	s.loginCalls.Add(1)

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	pair, err := s.issuePair(&acct.user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.refresh[acct.user.ID] = pair.RefreshToken
	s.mu.Unlock()

	user := acct.user
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         &user,
		ExpiresIn:    int(s.cfg.AccessTTL.Seconds()),
	})
}

func (s *Server) handleRefresh(c echo.Context) error {
	s.refreshCalls.Add(1)

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	claims, err := s.parseToken(req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	if typ, _ := claims["type"].(string); typ != "refresh" {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token type")
	}

	id, _ := claims["user_id"].(float64)
	userID := uint(id)

	s.mu.Lock()
	current, ok := s.refresh[userID]
	s.mu.Unlock()
	// Rotation: only the most recently issued refresh token is accepted.
	if !ok || current != req.RefreshToken {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	acct := s.accountByID(userID)
	if acct == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	pair, err := s.issuePair(&acct.user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.refresh[userID] = pair.RefreshToken
	s.mu.Unlock()

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(s.cfg.AccessTTL.Seconds()),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(c echo.Context) error {
	userID, _ := c.Get("user_id").(uint)
	acct := s.accountByID(userID)
	if acct == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	user := acct.user
	return c.JSON(http.StatusOK, map[string]any{"user": &user})
}

func (s *Server) handleListShops(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}

	s.mu.Lock()
	shops := make([]domain.Shop, len(s.shops))
	copy(shops, s.shops)
	s.mu.Unlock()

	total := len(shops)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, map[string]any{
		"shops":      shops[start:end],
		"page":       page,
		"limit":      limit,
		"totalItems": total,
		"totalPages": (total + limit - 1) / limit,
	})
}

func (s *Server) handleCreateShop(c echo.Context) error {
	var in struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		Moto        string `json:"moto"`
		City        string `json:"City"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, _ := c.Get("user_id").(uint)

	s.mu.Lock()
	shop := domain.Shop{
		ID:          s.nextID,
		Name:        in.Name,
		Description: in.Description,
		Moto:        in.Moto,
		City:        in.City,
		OwnerID:     userID,
	}
	s.nextID++
	s.shops = append(s.shops, shop)
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, map[string]any{"shop": shop})
}

func (s *Server) handleGetSettings(c echo.Context) error {
	s.mu.Lock()
	settings := s.settings
	s.mu.Unlock()
	return c.JSON(http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(c echo.Context) error {
	var in domain.GlobalSettings
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	in.ID = s.settings.ID
	s.settings = in
	settings := s.settings
	s.mu.Unlock()

	return c.JSON(http.StatusOK, settings)
}

func (s *Server) accountByID(id uint) *account {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.user.ID == id {
			return acct
		}
	}
	return nil
}
