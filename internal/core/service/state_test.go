package service

import (
	"testing"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

func TestSessionState_ReplaceNotifiesSynchronously(t *testing.T) {
	state := NewSessionState()

	var seen []domain.Session
	state.Subscribe(func(s domain.Session) {
		seen = append(seen, s)
	})

	user := &domain.User{ID: 7, Username: "alice"}
	state.Replace(domain.Session{User: user, AccessToken: "tok", Epoch: 1})

	if len(seen) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(seen))
	}
	if seen[0].User != user || seen[0].AccessToken != "tok" {
		t.Fatalf("listener observed wrong session: %+v", seen[0])
	}
	if got := state.Current(); got.AccessToken != "tok" {
		t.Fatalf("Current returned %+v", got)
	}
}

func TestSessionState_NotifiesInSubscriptionOrder(t *testing.T) {
	state := NewSessionState()

	var order []int
	state.Subscribe(func(domain.Session) { order = append(order, 1) })
	state.Subscribe(func(domain.Session) { order = append(order, 2) })
	state.Subscribe(func(domain.Session) { order = append(order, 3) })

	state.Replace(domain.Session{Epoch: 1})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("unexpected notification order: %v", order)
	}
}

func TestSessionState_Unsubscribe(t *testing.T) {
	state := NewSessionState()

	calls := 0
	cancel := state.Subscribe(func(domain.Session) { calls++ })

	state.Replace(domain.Session{Epoch: 1})
	cancel()
	cancel() // second call is a no-op
	state.Replace(domain.Session{Epoch: 2})

	if calls != 1 {
		t.Fatalf("expected 1 call after cancel, got %d", calls)
	}
}

func TestSessionState_ListenerMayReadCurrent(t *testing.T) {
	state := NewSessionState()

	var observed domain.Session
	state.Subscribe(func(domain.Session) {
		observed = state.Current()
	})

	state.Replace(domain.Session{AccessToken: "tok", Epoch: 1})

	if observed.AccessToken != "tok" {
		t.Fatalf("listener read stale session: %+v", observed)
	}
}
