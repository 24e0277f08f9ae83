package mockapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// auth validates the bearer token and injects identity into the request
// context. Expired or malformed tokens produce the 401 that drives the
// client's refresh-and-replay path.
func (s *Server) auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := s.parseToken(parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		if typ, _ := claims["type"].(string); typ != "access" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token type")
		}

		id, _ := claims["user_id"].(float64)
		c.Set("user_id", uint(id))

		names := []string{}
		if raw, ok := claims["roles"].([]any); ok {
			for _, r := range raw {
				if name, ok := r.(string); ok {
					names = append(names, name)
				}
			}
		}
		c.Set("roles", names)

		return next(c)
	}
}

// requireRole enforces role-based access control on top of auth.
func requireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			names, _ := c.Get("roles").([]string)
			for _, n := range names {
				if _, ok := allowed[n]; ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
