package client

import (
	"context"
	"net/http"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

const settingsPath = "/api/admin/settings"

// SettingsClient covers the global site settings admin endpoints.
type SettingsClient struct {
	c *Client
}

// Get returns the single site-wide settings record.
func (s *SettingsClient) Get(ctx context.Context) (*domain.GlobalSettings, error) {
	var out domain.GlobalSettings
	if err := s.c.do(ctx, http.MethodGet, settingsPath, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the site-wide settings. Admin only.
func (s *SettingsClient) Update(ctx context.Context, in domain.GlobalSettings) (*domain.GlobalSettings, error) {
	var out domain.GlobalSettings
	if err := s.c.do(ctx, http.MethodPut, settingsPath, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
