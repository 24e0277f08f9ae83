package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

// ShopsClient covers the /shops endpoints.
type ShopsClient struct {
	c *Client
}

// ShopPage is a paginated shop listing.
type ShopPage struct {
	Shops      []domain.Shop `json:"shops"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalItems int64         `json:"totalItems"`
	TotalPages int           `json:"totalPages"`
}

type shopEnvelope struct {
	Shop domain.Shop `json:"shop"`
}

// CreateShopInput is the payload for creating or updating a shop.
type CreateShopInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Moto        string `json:"moto,omitempty"`
	City        string `json:"City,omitempty"`
}

// List returns the caller's shops, paginated.
func (s *ShopsClient) List(ctx context.Context, page, limit int) (*ShopPage, error) {
	var out ShopPage
	if err := s.c.do(ctx, http.MethodGet, "/shops", pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAll returns every shop. Admin only.
func (s *ShopsClient) ListAll(ctx context.Context, page, limit int) (*ShopPage, error) {
	var out ShopPage
	if err := s.c.do(ctx, http.MethodGet, "/shops/all", pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one shop with its owner and employees.
func (s *ShopsClient) Get(ctx context.Context, id uint) (*domain.Shop, error) {
	var out shopEnvelope
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/shops/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}

// Create registers a new shop owned by the current user.
func (s *ShopsClient) Create(ctx context.Context, in CreateShopInput) (*domain.Shop, error) {
	var out shopEnvelope
	if err := s.c.do(ctx, http.MethodPost, "/shops", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}

// Update replaces the shop's editable fields.
func (s *ShopsClient) Update(ctx context.Context, id uint, in CreateShopInput) (*domain.Shop, error) {
	var out shopEnvelope
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/shops/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}

// Delete removes a shop.
func (s *ShopsClient) Delete(ctx context.Context, id uint) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/shops/%d", id), nil, nil, nil)
}

// Products lists a shop's products, paginated.
func (s *ShopsClient) Products(ctx context.Context, id uint, page, limit int) (*ProductPage, error) {
	var out ProductPage
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/shops/%d/products", id), pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddEmployee attaches a user to the shop's staff.
func (s *ShopsClient) AddEmployee(ctx context.Context, shopID, userID uint) error {
	in := map[string]uint{"user_id": userID}
	return s.c.do(ctx, http.MethodPost, fmt.Sprintf("/shops/%d/employees", shopID), nil, in, nil)
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
