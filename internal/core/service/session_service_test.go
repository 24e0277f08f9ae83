package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

// memStore is an in-memory ports.CredentialStore.
type memStore struct {
	mu   sync.Mutex
	pair domain.TokenPair
	user *domain.User
	ok   bool
}

func (s *memStore) Save(pair domain.TokenPair, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair, s.user, s.ok = pair, user, true
	return nil
}

func (s *memStore) Load() (domain.TokenPair, *domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair, s.user, s.ok
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair, s.user, s.ok = domain.TokenPair{}, nil, false
	return nil
}

// stubAuthAPI scripts the login and refresh exchanges.
type stubAuthAPI struct {
	loginUser  *domain.User
	loginPair  domain.TokenPair
	loginErr   error
	refreshErr error

	refreshCalls atomic.Int64
	refreshGate  chan struct{} // when set, Refresh blocks until closed
}

func (a *stubAuthAPI) Login(_ context.Context, email, password string) (*domain.User, domain.TokenPair, error) {
	if a.loginErr != nil {
		return nil, domain.TokenPair{}, a.loginErr
	}
	return a.loginUser, a.loginPair, nil
}

func (a *stubAuthAPI) Refresh(_ context.Context, refreshToken string) (domain.TokenPair, error) {
	n := a.refreshCalls.Add(1)
	if a.refreshGate != nil {
		<-a.refreshGate
	}
	if a.refreshErr != nil {
		return domain.TokenPair{}, a.refreshErr
	}
	return domain.TokenPair{
		AccessToken:  fmt.Sprintf("at-%d", n),
		RefreshToken: fmt.Sprintf("rt-%d", n),
	}, nil
}

func adminUser() *domain.User {
	return &domain.User{
		ID:       1,
		Username: "alice",
		Email:    "a@b.com",
		Roles:    []domain.Role{{ID: 1, Name: "Admin"}},
	}
}

func TestSessionManager_Hydrate_EmptyStore(t *testing.T) {
	m := NewSessionManager(&memStore{}, &stubAuthAPI{})
	m.Hydrate()

	cur := m.State().Current()
	if cur.Loading {
		t.Fatal("Loading still set after hydration")
	}
	if cur.Authenticated() {
		t.Fatalf("expected logged-out session, got %+v", cur)
	}
	if _, ok := m.AccessToken(); ok {
		t.Fatal("AccessToken reported a token for an empty store")
	}
}

func TestSessionManager_Hydrate_RestoresSession(t *testing.T) {
	store := &memStore{}
	store.Save(domain.TokenPair{AccessToken: "at-0", RefreshToken: "rt-0"}, adminUser())

	m := NewSessionManager(store, &stubAuthAPI{})
	m.Hydrate()

	cur := m.State().Current()
	if !cur.Authenticated() || cur.User.Username != "alice" {
		t.Fatalf("session not restored: %+v", cur)
	}
	token, ok := m.AccessToken()
	if !ok || token != "at-0" {
		t.Fatalf("AccessToken = %q, %v", token, ok)
	}
}

func TestSessionManager_Hydrate_Idempotent(t *testing.T) {
	store := &memStore{}
	store.Save(domain.TokenPair{AccessToken: "at-0", RefreshToken: "rt-0"}, adminUser())

	m := NewSessionManager(store, &stubAuthAPI{})
	m.Hydrate()
	first := m.State().Current()
	m.Hydrate()
	second := m.State().Current()

	if first.AccessToken != second.AccessToken || first.User.ID != second.User.ID {
		t.Fatalf("hydration not idempotent: %+v vs %+v", first, second)
	}
}

func TestSessionManager_Hydrate_SetsLoadingWhileRunning(t *testing.T) {
	m := NewSessionManager(&memStore{}, &stubAuthAPI{})

	var sawLoading bool
	m.State().Subscribe(func(s domain.Session) {
		if s.Loading {
			sawLoading = true
		}
	})

	m.Hydrate()

	if !sawLoading {
		t.Fatal("subscribers never observed the Loading session")
	}
	if m.State().Current().Loading {
		t.Fatal("Loading still set after hydration")
	}
}

func TestSessionManager_Login_ReplacesSessionAndPersists(t *testing.T) {
	store := &memStore{}
	auth := &stubAuthAPI{
		loginUser: adminUser(),
		loginPair: domain.TokenPair{AccessToken: "at-login", RefreshToken: "rt-login"},
	}
	m := NewSessionManager(store, auth)
	m.Hydrate()

	user, err := m.Login(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	cur := m.State().Current()
	if !cur.Authenticated() || cur.AccessToken != "at-login" {
		t.Fatalf("session not replaced: %+v", cur)
	}
	if !m.HasRole("Admin") {
		t.Fatal("expected HasRole(Admin) after login")
	}
	if m.HasRole("SuperAdmin") {
		t.Fatal("unexpected SuperAdmin role")
	}

	pair, stored, ok := store.Load()
	if !ok || pair.RefreshToken != "rt-login" || stored.ID != 1 {
		t.Fatalf("credentials not persisted: %+v %+v %v", pair, stored, ok)
	}
}

func TestSessionManager_Login_FailureLeavesSessionIntact(t *testing.T) {
	store := &memStore{}
	store.Save(domain.TokenPair{AccessToken: "at-0", RefreshToken: "rt-0"}, adminUser())
	auth := &stubAuthAPI{loginErr: domain.ErrInvalidCredentials}

	m := NewSessionManager(store, auth)
	m.Hydrate()

	if _, err := m.Login(context.Background(), "a@b.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	cur := m.State().Current()
	if !cur.Authenticated() || cur.AccessToken != "at-0" {
		t.Fatalf("failed login disturbed the session: %+v", cur)
	}
}

func TestSessionManager_Logout_ClearsStateAndStore(t *testing.T) {
	store := &memStore{}
	auth := &stubAuthAPI{
		loginUser: adminUser(),
		loginPair: domain.TokenPair{AccessToken: "at-login", RefreshToken: "rt-login"},
	}
	m := NewSessionManager(store, auth)
	m.Hydrate()
	if _, err := m.Login(context.Background(), "a@b.com", "x"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	m.Logout()

	if cur := m.State().Current(); cur.Authenticated() {
		t.Fatalf("session survived logout: %+v", cur)
	}
	if _, _, ok := store.Load(); ok {
		t.Fatal("credential store survived logout")
	}
	if _, err := m.RefreshSession(context.Background()); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("refresh after logout: expected ErrSessionExpired, got %v", err)
	}
}

func TestSessionManager_Refresh_Success(t *testing.T) {
	store := &memStore{}
	auth := &stubAuthAPI{
		loginUser: adminUser(),
		loginPair: domain.TokenPair{AccessToken: "at-login", RefreshToken: "rt-login"},
	}
	m := NewSessionManager(store, auth)
	m.Hydrate()
	if _, err := m.Login(context.Background(), "a@b.com", "x"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	token, err := m.RefreshSession(context.Background())
	if err != nil {
		t.Fatalf("RefreshSession returned error: %v", err)
	}
	if token != "at-1" {
		t.Fatalf("unexpected access token: %q", token)
	}

	cur := m.State().Current()
	if cur.AccessToken != "at-1" || cur.User == nil {
		t.Fatalf("session not updated: %+v", cur)
	}
	pair, _, ok := store.Load()
	if !ok || pair.RefreshToken != "rt-1" {
		t.Fatalf("rotated refresh token not persisted: %+v %v", pair, ok)
	}
}

func TestSessionManager_Refresh_RejectedTerminatesSession(t *testing.T) {
	store := &memStore{}
	store.Save(domain.TokenPair{AccessToken: "at-0", RefreshToken: "rt-0"}, adminUser())
	auth := &stubAuthAPI{refreshErr: domain.ErrRefreshRejected}

	m := NewSessionManager(store, auth)
	m.Hydrate()

	if _, err := m.RefreshSession(context.Background()); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if cur := m.State().Current(); cur.Authenticated() {
		t.Fatalf("session survived a rejected refresh: %+v", cur)
	}
	if _, _, ok := store.Load(); ok {
		t.Fatal("credential store survived a rejected refresh")
	}
}

func TestSessionManager_Refresh_TransientErrorKeepsSession(t *testing.T) {
	store := &memStore{}
	store.Save(domain.TokenPair{AccessToken: "at-0", RefreshToken: "rt-0"}, adminUser())
	netErr := errors.New("dial tcp: connection refused")
	auth := &stubAuthAPI{refreshErr: netErr}

	m := NewSessionManager(store, auth)
	m.Hydrate()

	_, err := m.RefreshSession(context.Background())
	if !errors.Is(err, netErr) {
		t.Fatalf("expected the transport error, got %v", err)
	}
	if cur := m.State().Current(); !cur.Authenticated() {
		t.Fatalf("transient failure cleared the session: %+v", cur)
	}
	if _, _, ok := store.Load(); !ok {
		t.Fatal("transient failure cleared the store")
	}
}

func TestSessionManager_Refresh_CoalescesConcurrentCallers(t *testing.T) {
	store := &memStore{}
	store.Save(domain.TokenPair{AccessToken: "at-0", RefreshToken: "rt-0"}, adminUser())
	gate := make(chan struct{})
	auth := &stubAuthAPI{refreshGate: gate}

	m := NewSessionManager(store, auth)
	m.Hydrate()

	const callers = 8
	tokens := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = m.RefreshSession(context.Background())
		}(i)
	}

	// Hold the in-flight exchange open long enough for every caller to
	// join it, then let it finish.
	for auth.refreshCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := auth.refreshCalls.Load(); got != 1 {
		t.Fatalf("expected 1 network refresh, got %d", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if tokens[i] != tokens[0] {
			t.Fatalf("caller %d got token %q, caller 0 got %q", i, tokens[i], tokens[0])
		}
	}
}

func TestSessionManager_EverySessionIsConsistent(t *testing.T) {
	store := &memStore{}
	auth := &stubAuthAPI{
		loginUser: adminUser(),
		loginPair: domain.TokenPair{AccessToken: "at-login", RefreshToken: "rt-login"},
	}
	m := NewSessionManager(store, auth)

	// User and access token must always be set and cleared together, in
	// every session any subscriber ever observes.
	m.State().Subscribe(func(s domain.Session) {
		if !s.Consistent() {
			t.Errorf("observed inconsistent session: %+v", s)
		}
	})

	ctx := context.Background()
	m.Hydrate()
	if _, err := m.Login(ctx, "a@b.com", "x"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := m.RefreshSession(ctx); err != nil {
		t.Fatalf("RefreshSession: %v", err)
	}
	m.Logout()
	m.Hydrate()

	if !m.State().Current().Consistent() {
		t.Fatalf("final session inconsistent: %+v", m.State().Current())
	}
}

func TestSessionManager_Refresh_StaleResultDiscardedAfterLogout(t *testing.T) {
	store := &memStore{}
	store.Save(domain.TokenPair{AccessToken: "at-0", RefreshToken: "rt-0"}, adminUser())
	gate := make(chan struct{})
	auth := &stubAuthAPI{refreshGate: gate}

	m := NewSessionManager(store, auth)
	m.Hydrate()

	done := make(chan struct{})
	var token string
	var err error
	go func() {
		defer close(done)
		token, err = m.RefreshSession(context.Background())
	}()

	// Wait until the refresh is in flight, then log out underneath it.
	for auth.refreshCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	m.Logout()
	close(gate)
	<-done

	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got token=%q err=%v", token, err)
	}
	if cur := m.State().Current(); cur.Authenticated() {
		t.Fatalf("stale refresh resurrected the session: %+v", cur)
	}
	if _, _, ok := store.Load(); ok {
		t.Fatal("stale refresh repopulated the store")
	}
}
