package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/talodu/marketplace-client/internal/api/metrics"
	"github.com/talodu/marketplace-client/internal/core/domain"
	"github.com/talodu/marketplace-client/internal/core/ports"
	"github.com/talodu/marketplace-client/pkg/logger"
)

// SessionManager owns the authenticated identity for the lifetime of the
// process. It is the only component that mutates the session state and
// the only caller of the credential store.
//
// mu serialises every session mutation, including the state replacement,
// so that an epoch check and the write it guards are atomic. Subscribers
// therefore run with mu held and must not call back into the manager's
// mutating operations.
type SessionManager struct {
	state *SessionState
	store ports.CredentialStore
	auth  ports.AuthAPI
	log   zerolog.Logger

	mu           sync.Mutex
	epoch        uint64
	refreshToken string

	group singleflight.Group
}

// NewSessionManager wires the manager to its store and auth exchange.
func NewSessionManager(store ports.CredentialStore, auth ports.AuthAPI) *SessionManager {
	return &SessionManager{
		state: NewSessionState(),
		store: store,
		auth:  auth,
		log:   logger.Get().With().Str("component", "session").Logger(),
	}
}

// State exposes the session state for read access and subscriptions.
func (m *SessionManager) State() *SessionState {
	return m.state
}

// AccessToken implements ports.TokenSource. It reports no token while
// the session is hydrating.
func (m *SessionManager) AccessToken() (string, bool) {
	cur := m.state.Current()
	if cur.Loading || !cur.Authenticated() {
		return "", false
	}
	return cur.AccessToken, true
}

// Hydrate reconciles the credential store with the session state. It runs
// once at startup, before identity-dependent work begins; consumers must
// treat the session as indeterminate while Loading is set. Hydrating
// twice against unchanged storage yields the same session.
func (m *SessionManager) Hydrate() {
	m.mu.Lock()
	epoch := m.epoch
	m.state.Replace(domain.Session{Loading: true, Epoch: epoch})
	m.mu.Unlock()

	pair, user, ok := m.store.Load()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		// A login or logout won the race; leave its result alone.
		return
	}
	if !ok {
		m.refreshToken = ""
		m.state.Replace(domain.Session{Epoch: epoch})
		return
	}
	m.refreshToken = pair.RefreshToken
	m.state.Replace(domain.Session{User: user, AccessToken: pair.AccessToken, Epoch: epoch})
	m.log.Debug().Uint("user_id", user.ID).Msg("session hydrated")
}

// Login exchanges the credentials, persists the result, and replaces the
// session. Failure leaves the existing session untouched.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, pair, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	m.refreshToken = pair.RefreshToken
	if err := m.store.Save(pair, user); err != nil {
		m.log.Warn().Err(err).Msg("session not persisted")
	}
	m.state.Replace(domain.Session{User: user, AccessToken: pair.AccessToken, Epoch: epoch})
	m.mu.Unlock()

	m.log.Info().Uint("user_id", user.ID).Str("user", user.DisplayName()).Msg("logged in")
	return user, nil
}

// Logout clears the credential store and the session state, and bumps the
// epoch so any in-flight refresh result is discarded.
func (m *SessionManager) Logout() {
	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	m.refreshToken = ""
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("credential store not cleared")
	}
	m.state.Replace(domain.Session{Epoch: epoch})
	m.mu.Unlock()

	m.log.Info().Msg("logged out")
}

// RefreshSession drives the refresh exchange and returns the new access
// token. Concurrent callers coalesce into a single network refresh and
// share its outcome. A rejected refresh is terminal: the session is
// cleared and every waiter receives ErrSessionExpired. A transport
// failure propagates as-is and leaves the session untouched.
func (m *SessionManager) RefreshSession(ctx context.Context) (string, error) {
	token, err, shared := m.group.Do("refresh", func() (any, error) {
		return m.doRefresh(ctx)
	})
	if shared {
		metrics.RefreshWaiters.Inc()
	}
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (m *SessionManager) doRefresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	start := m.epoch
	rt := m.refreshToken
	m.mu.Unlock()

	if rt == "" {
		metrics.RefreshTotal.WithLabelValues("rejected").Inc()
		m.forceLogout(start, "no_refresh_token")
		return "", domain.ErrSessionExpired
	}

	pair, err := m.auth.Refresh(ctx, rt)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshRejected) || errors.Is(err, domain.ErrNoRefreshToken) {
			metrics.RefreshTotal.WithLabelValues("rejected").Inc()
			m.log.Warn().Err(err).Msg("refresh rejected, session terminated")
			m.forceLogout(start, "refresh_rejected")
			return "", domain.ErrSessionExpired
		}
		metrics.RefreshTotal.WithLabelValues("error").Inc()
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epoch != start {
		// Logout or a newer login happened while the refresh was in
		// flight; the stale pair must not resurrect the old session.
		cur := m.state.Current()
		if cur.Authenticated() {
			return cur.AccessToken, nil
		}
		return "", domain.ErrSessionExpired
	}

	user := m.state.Current().User
	if user == nil {
		// A token with no user would violate the session invariant.
		metrics.RefreshTotal.WithLabelValues("rejected").Inc()
		m.forceLogoutLocked("corrupt_state")
		return "", domain.ErrSessionExpired
	}

	m.refreshToken = pair.RefreshToken
	if err := m.store.Save(pair, user); err != nil {
		m.log.Warn().Err(err).Msg("refreshed session not persisted")
	}
	m.state.Replace(domain.Session{User: user, AccessToken: pair.AccessToken, Epoch: start})

	metrics.RefreshTotal.WithLabelValues("success").Inc()
	m.log.Debug().Msg("access token refreshed")
	return pair.AccessToken, nil
}

// forceLogout clears the session only when the epoch still matches from,
// so a newer login is never clobbered by a stale failure.
func (m *SessionManager) forceLogout(from uint64, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != from {
		return
	}
	m.forceLogoutLocked(reason)
}

func (m *SessionManager) forceLogoutLocked(reason string) {
	m.epoch++
	m.refreshToken = ""
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("credential store not cleared")
	}
	m.state.Replace(domain.Session{Epoch: m.epoch})
	metrics.ForcedLogoutsTotal.WithLabelValues(reason).Inc()
}
