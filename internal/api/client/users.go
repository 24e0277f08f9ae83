package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

// UsersClient covers the admin user management endpoints.
type UsersClient struct {
	c *Client
}

// UserPage is a paginated user listing.
type UserPage struct {
	Users      []domain.User `json:"users"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalItems int64         `json:"totalItems"`
	TotalPages int           `json:"totalPages"`
}

type userEnvelope struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// UserInput is the payload for creating or updating a user. Roles are
// referenced by ID.
type UserInput struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	RoleIDs   []uint `json:"roles"`
}

// List returns users, paginated. Admin only.
func (u *UsersClient) List(ctx context.Context, page, limit int) (*UserPage, error) {
	var out UserPage
	if err := u.c.do(ctx, http.MethodGet, "/users", pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one user. An unknown id maps to ErrUserNotFound.
func (u *UsersClient) Get(ctx context.Context, id uint) (*domain.User, error) {
	var out userEnvelope
	if err := u.c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, &out); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w (id %d)", domain.ErrUserNotFound, id)
		}
		return nil, err
	}
	if out.User == nil {
		return nil, domain.ErrMalformedResponse
	}
	return out.User, nil
}

// Create registers a user. Admin only.
func (u *UsersClient) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	var out userEnvelope
	if err := u.c.do(ctx, http.MethodPost, "/user", nil, in, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, domain.ErrMalformedResponse
	}
	return out.User, nil
}

// Update replaces a user's editable fields and role set.
func (u *UsersClient) Update(ctx context.Context, id uint, in UserInput) (*domain.User, error) {
	var out userEnvelope
	if err := u.c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, domain.ErrMalformedResponse
	}
	return out.User, nil
}

// Delete removes a user. Admin only.
func (u *UsersClient) Delete(ctx context.Context, id uint) error {
	return u.c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, nil)
}
