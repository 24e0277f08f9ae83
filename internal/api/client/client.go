// Package client is the typed surface over the marketplace REST API.
// Every call is routed through the auth transport, so expired-token
// recovery is invisible here: a method either returns its result or a
// terminal error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

const defaultTimeout = 30 * time.Second

// Client bundles the per-resource clients behind one base URL and HTTP
// client. The HTTP client is expected to carry the auth transport.
type Client struct {
	baseURL string
	http    *http.Client

	Shops    *ShopsClient
	Products *ProductsClient
	Images   *ImagesClient
	Settings *SettingsClient
	Users    *UsersClient
}

// New builds a Client. A nil httpClient gets a plain client with a
// default timeout and no authorization, which is only useful for public
// endpoints.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
	c.Shops = &ShopsClient{c: c}
	c.Products = &ProductsClient{c: c}
	c.Images = &ImagesClient{c: c}
	c.Settings = &SettingsClient{c: c}
	c.Users = &UsersClient{c: c}
	return c
}

// APIError carries a server error response that has no dedicated
// sentinel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// errorEnvelope is the API's canonical error body.
type errorEnvelope struct {
	Error string `json:"error"`
}

// do sends in as JSON (when non-nil) and decodes a 2xx response into out
// (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var payload []byte
	contentType := ""
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s: %w", path, err)
		}
		contentType = "application/json"
	}
	return c.doBody(ctx, method, path, query, contentType, payload, out)
}

// doBody is the raw variant used for non-JSON payloads (multipart
// uploads). The body is a byte slice so the request stays replayable by
// the retry transport.
func (c *Client) doBody(ctx context.Context, method, path string, query url.Values, contentType string, body []byte, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return domain.ErrSessionExpired
		}
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("client: decode %s: %w", path, domain.ErrMalformedResponse)
		}
		return nil
	}

	return c.errorFrom(resp)
}

// errorFrom maps a non-2xx response to a domain sentinel where one
// applies.
func (c *Client) errorFrom(resp *http.Response) error {
	var env errorEnvelope
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&env)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		// The transport already exhausted recovery for this request.
		return domain.ErrSessionExpired
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, env.Error)
	}
	return &APIError{Status: resp.StatusCode, Message: env.Error}
}
