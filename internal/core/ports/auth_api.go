package ports

import (
	"context"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

// AuthAPI performs the credential exchanges against the remote API.
// It holds no state of its own; persisting the result is the caller's
// responsibility.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.User, domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
}
