package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

// ProductsClient covers the /products endpoints.
type ProductsClient struct {
	c *Client
}

// ProductPage is a paginated product listing.
type ProductPage struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalItems int64            `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

type productEnvelope struct {
	Product domain.Product `json:"product"`
	Shop    *domain.Shop   `json:"shop,omitempty"`
}

// SearchOptions narrows a product listing. Zero values are omitted.
type SearchOptions struct {
	Search   string
	Sort     string
	Page     int
	Limit    int
	MinPrice float64
	MaxPrice float64
}

// CreateProductInput is the payload for creating or updating a product.
type CreateProductInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Description string  `json:"description,omitempty"`
	ShopID      uint    `json:"shop_id"`
}

// List queries products with search, sort and pagination.
func (p *ProductsClient) List(ctx context.Context, opts SearchOptions) (*ProductPage, error) {
	q := pageQuery(opts.Page, opts.Limit)
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	if opts.MinPrice > 0 {
		q.Set("min_price", strconv.FormatFloat(opts.MinPrice, 'f', -1, 64))
	}
	if opts.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(opts.MaxPrice, 'f', -1, 64))
	}

	var out ProductPage
	if err := p.c.do(ctx, http.MethodGet, "/products", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one product with its shop and images.
func (p *ProductsClient) Get(ctx context.Context, id uint) (*domain.Product, error) {
	var out productEnvelope
	if err := p.c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Shop != nil {
		out.Product.Shop = out.Shop
	}
	return &out.Product, nil
}

// Create lists a new product. Requires the Admin or SuperAdmin role.
func (p *ProductsClient) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	var out productEnvelope
	if err := p.c.do(ctx, http.MethodPost, "/products", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// Update replaces a product's editable fields.
func (p *ProductsClient) Update(ctx context.Context, id uint, in CreateProductInput) (*domain.Product, error) {
	var out productEnvelope
	if err := p.c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// Delete removes a product.
func (p *ProductsClient) Delete(ctx context.Context, id uint) error {
	return p.c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil, nil)
}

// BatchDelete removes several products in one call.
func (p *ProductsClient) BatchDelete(ctx context.Context, ids []uint) error {
	in := map[string][]uint{"ids": ids}
	return p.c.do(ctx, http.MethodDelete, "/products/delete/batch", nil, in, nil)
}
