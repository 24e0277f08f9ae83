// Package transport wraps every outgoing API call with bearer
// authorization and transparent expired-token recovery: a 401 triggers a
// single coalesced refresh followed by exactly one replay of the
// rejected request.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/talodu/marketplace-client/internal/api/metrics"
	"github.com/talodu/marketplace-client/internal/core/domain"
	"github.com/talodu/marketplace-client/internal/core/ports"
	"github.com/talodu/marketplace-client/pkg/logger"
)

// AuthTransport is an http.RoundTripper decorating a base transport with
// the session's access token. Login and refresh calls must not be routed
// through it; they use a plain client.
type AuthTransport struct {
	base      http.RoundTripper
	tokens    ports.TokenSource
	refresher ports.SessionRefresher
	log       zerolog.Logger
}

// New builds an AuthTransport over base. A nil base falls back to
// http.DefaultTransport.
func New(base http.RoundTripper, tokens ports.TokenSource, refresher ports.SessionRefresher) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{
		base:      base,
		tokens:    tokens,
		refresher: refresher,
		log:       logger.Get().With().Str("component", "transport").Logger(),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.roundTrip(req)

	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	metrics.RequestDuration.WithLabelValues(req.Method, code).Observe(time.Since(start).Seconds())
	return resp, err
}

func (t *AuthTransport) roundTrip(req *http.Request) (*http.Response, error) {
	first := req.Clone(req.Context())
	if token, ok := t.tokens.AccessToken(); ok {
		first.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(first)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Authorization failure. The request may be replayed at most once,
	// and only when its body can be rewound.
	if req.Body != nil && req.GetBody == nil {
		t.log.Debug().Str("path", req.URL.Path).Msg("401 with non-replayable body, not retrying")
		return resp, nil
	}

	token, rerr := t.refresher.RefreshSession(req.Context())
	if rerr != nil {
		drainAndClose(resp.Body)
		if errors.Is(rerr, domain.ErrSessionExpired) {
			return nil, rerr
		}
		return nil, fmt.Errorf("token refresh after 401: %w", rerr)
	}
	drainAndClose(resp.Body)

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, berr := req.GetBody()
		if berr != nil {
			return nil, fmt.Errorf("replay request body: %w", berr)
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+token)

	t.log.Debug().Str("path", req.URL.Path).Msg("replaying request with refreshed token")

	// The replay's outcome is terminal either way: a second 401
	// propagates unchanged and never triggers another refresh.
	resp, err = t.base.RoundTrip(retry)
	outcome := "success"
	if err != nil || resp.StatusCode == http.StatusUnauthorized {
		outcome = "failed"
	}
	metrics.RequestRetriesTotal.WithLabelValues(outcome).Inc()
	return resp, err
}

// drainAndClose discards a bounded amount of the body before closing so
// the underlying connection can be reused.
func drainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4<<10))
	_ = rc.Close()
}
