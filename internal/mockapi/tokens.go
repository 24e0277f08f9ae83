package mockapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

// issuePair mints an HS256 access/refresh token pair for the user. The
// access token carries the role names so the role middleware needs no
// user lookup; the refresh token carries only the identity and a type
// marker.
func (s *Server) issuePair(user *domain.User) (domain.TokenPair, error) {
	now := time.Now()

	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Name)
	}

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"roles":   roles,
		"type":    "access",
		"exp":     now.Add(s.cfg.AccessTTL).Unix(),
		"iat":     now.Unix(),
	})
	accessToken, err := access.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"type":    "refresh",
		"exp":     now.Add(s.cfg.RefreshTTL).Unix(),
		"iat":     now.Unix(),
	})
	refreshToken, err := refresh.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// parseToken validates signature and expiry and returns the claims.
func (s *Server) parseToken(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}
