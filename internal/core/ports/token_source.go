package ports

import "context"

// TokenSource exposes the current access token for outbound requests.
type TokenSource interface {
	AccessToken() (token string, ok bool)
}

// SessionRefresher drives the refresh exchange after a rejected request.
// Concurrent callers are coalesced into a single network refresh; every
// caller observes the same resulting token or the same error.
type SessionRefresher interface {
	RefreshSession(ctx context.Context) (accessToken string, err error)
}
