package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

// AuthService performs the login and refresh exchanges against the remote
// API. It is pure request/response logic and stores nothing; what to do
// with the returned credentials is the caller's concern.
//
// The HTTP client handed to NewAuthService must NOT route through the
// retry transport, otherwise a rejected refresh would recurse into
// another refresh.
type AuthService struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
}

func NewAuthService(baseURL string, httpClient *http.Client) *AuthService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AuthService{
		baseURL:  baseURL,
		http:     httpClient,
		validate: validator.New(),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user"`
	ExpiresIn    int          `json:"expires_in"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login exchanges the credentials for a token pair and user snapshot.
// A 4xx from the server maps to ErrInvalidCredentials; a response missing
// required fields maps to ErrMalformedResponse.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.TokenPair, error) {
	req := loginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.TokenPair{}, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}

	var resp loginResponse
	status, err := s.postJSON(ctx, "/login", req, &resp)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	switch {
	case status >= 400 && status < 500:
		return nil, domain.TokenPair{}, domain.ErrInvalidCredentials
	case status != http.StatusOK:
		return nil, domain.TokenPair{}, fmt.Errorf("auth: login: unexpected status %d", status)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" || resp.User == nil {
		return nil, domain.TokenPair{}, fmt.Errorf("auth: login: %w", domain.ErrMalformedResponse)
	}

	pair := domain.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	return resp.User, pair, nil
}

// Refresh exchanges the refresh token for a fresh pair. A 4xx from the
// server means the refresh token was invalidated (ErrRefreshRejected,
// terminal for the session). Transport errors propagate unwrapped into a
// sentinel so the caller can retry later without a logout.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if refreshToken == "" {
		return domain.TokenPair{}, domain.ErrNoRefreshToken
	}

	var resp refreshResponse
	status, err := s.postJSON(ctx, "/refresh", refreshRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return domain.TokenPair{}, err
	}
	switch {
	case status >= 400 && status < 500:
		return domain.TokenPair{}, domain.ErrRefreshRejected
	case status != http.StatusOK:
		return domain.TokenPair{}, fmt.Errorf("auth: refresh: unexpected status %d", status)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return domain.TokenPair{}, fmt.Errorf("auth: refresh: %w", domain.ErrMalformedResponse)
	}

	return domain.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

// postJSON sends body as JSON and decodes the response into out when the
// status is 200. It returns the status code; a non-nil error means the
// request never completed (network failure) or the body was undecodable.
func (s *AuthService) postJSON(ctx context.Context, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("auth: encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("auth: build %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("auth: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("auth: decode %s: %w", path, domain.ErrMalformedResponse)
		}
	}
	return resp.StatusCode, nil
}
