package domain

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrNoRefreshToken = errors.New("no refresh token")
var ErrRefreshRejected = errors.New("refresh token rejected")
var ErrSessionExpired = errors.New("session expired")
var ErrMalformedResponse = errors.New("malformed server response")
var ErrStorageCorrupted = errors.New("stored session corrupted")
var ErrUserNotFound = errors.New("user not found")
var ErrForbidden = errors.New("access forbidden")
var ErrNotFound = errors.New("resource not found")

// TokenPair is the credential pair issued by the marketplace API: a
// short-lived bearer access token and a longer-lived refresh token.
// Both are opaque to the client; expiry is discovered reactively through
// a rejected request, never inspected locally.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session is the in-memory record of the current authenticated identity.
// User and AccessToken are set and cleared together; a session violating
// that invariant is treated as corrupted and forces a logout.
type Session struct {
	User        *User
	AccessToken string
	// Loading is true only during the bootstrap window. Consumers must
	// treat the session as indeterminate while it is set.
	Loading bool
	// Epoch is a logical version counter bumped on every login/logout.
	// Asynchronous results carrying a stale epoch are discarded.
	Epoch uint64
}

// Authenticated reports whether the session holds a usable identity.
func (s Session) Authenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// Consistent reports whether the user and access token are either both
// present or both absent.
func (s Session) Consistent() bool {
	return (s.User != nil) == (s.AccessToken != "")
}
