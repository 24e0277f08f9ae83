package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

func authTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthService_Login_Success(t *testing.T) {
	srv := authTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding login body: %v", err)
		}
		if body["email"] != "a@b.com" || body["password"] != "secret1" {
			t.Errorf("unexpected credentials: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"expires_in":    900,
			"user": map[string]any{
				"id":       3,
				"username": "alice",
				"email":    "a@b.com",
				"roles":    []map[string]any{{"ID": 1, "Name": "Admin"}},
			},
		})
	})

	svc := NewAuthService(srv.URL, nil)
	user, pair, err := svc.Login(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user == nil || user.ID != 3 || user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !user.HasRole("Admin") {
		t.Fatalf("expected Admin role, got %+v", user.Roles)
	}
	if pair.AccessToken != "at-1" || pair.RefreshToken != "rt-1" {
		t.Fatalf("unexpected pair: %+v", pair)
	}
}

func TestAuthService_Login_Rejected(t *testing.T) {
	srv := authTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
	})

	svc := NewAuthService(srv.URL, nil)
	_, _, err := svc.Login(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_ValidatesBeforeSending(t *testing.T) {
	called := false
	srv := authTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	svc := NewAuthService(srv.URL, nil)
	if _, _, err := svc.Login(context.Background(), "not-an-email", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if called {
		t.Fatal("request was sent despite invalid input")
	}
}

func TestAuthService_Login_MalformedResponse(t *testing.T) {
	srv := authTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Missing refresh_token and user.
		json.NewEncoder(w).Encode(map[string]any{"access_token": "at-1"})
	})

	svc := NewAuthService(srv.URL, nil)
	_, _, err := svc.Login(context.Background(), "a@b.com", "secret1")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestAuthService_Refresh_Success(t *testing.T) {
	srv := authTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/refresh" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "rt-old" {
			t.Errorf("unexpected refresh token: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-new",
			"refresh_token": "rt-new",
			"expires_in":    900,
		})
	})

	svc := NewAuthService(srv.URL, nil)
	pair, err := svc.Refresh(context.Background(), "rt-old")
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if pair.AccessToken != "at-new" || pair.RefreshToken != "rt-new" {
		t.Fatalf("unexpected pair: %+v", pair)
	}
}

func TestAuthService_Refresh_EmptyToken(t *testing.T) {
	svc := NewAuthService("http://127.0.0.1:0", nil)
	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, domain.ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}
}

func TestAuthService_Refresh_Rejected(t *testing.T) {
	srv := authTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid refresh token"})
	})

	svc := NewAuthService(srv.URL, nil)
	if _, err := svc.Refresh(context.Background(), "revoked"); !errors.Is(err, domain.ErrRefreshRejected) {
		t.Fatalf("expected ErrRefreshRejected, got %v", err)
	}
}

func TestAuthService_Refresh_NetworkErrorIsNotRejection(t *testing.T) {
	srv := authTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close() // refuse connections from now on

	svc := NewAuthService(srv.URL, nil)
	_, err := svc.Refresh(context.Background(), "rt-old")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, domain.ErrRefreshRejected) || errors.Is(err, domain.ErrNoRefreshToken) {
		t.Fatalf("transport failure must not look like a rejection: %v", err)
	}
}
