package service

import (
	"sync"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

// SessionState is the single source of truth for the current session.
// Replace is the only mutation path. Listeners are notified synchronously
// after every replacement, in subscription order, and never observe a
// partially updated session.
type SessionState struct {
	mu        sync.RWMutex
	session   domain.Session
	listeners []subscriber
	nextID    int
}

type subscriber struct {
	id int
	fn func(domain.Session)
}

// NewSessionState returns a state holding the zero (logged-out) session.
func NewSessionState() *SessionState {
	return &SessionState{}
}

// Current returns a copy of the session.
func (s *SessionState) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Replace swaps the session and notifies subscribers with the new value.
// Notification happens outside the lock so a listener may call Current
// without deadlocking.
func (s *SessionState) Replace(next domain.Session) {
	s.mu.Lock()
	s.session = next
	notify := make([]subscriber, len(s.listeners))
	copy(notify, s.listeners)
	s.mu.Unlock()

	for _, sub := range notify {
		sub.fn(next)
	}
}

// Subscribe registers fn to run after every replacement. The returned
// function cancels the subscription and is safe to call more than once.
func (s *SessionState) Subscribe(fn func(domain.Session)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
