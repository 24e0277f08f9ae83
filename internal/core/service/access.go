package service

import "github.com/talodu/marketplace-client/internal/core/domain"

// Authorization predicates. All of them are pure readers of the current
// session and return false when no user is authenticated or while the
// session is still hydrating; absence of identity is never an error.

// HasRole reports whether the current user carries the named role.
func (m *SessionManager) HasRole(name string) bool {
	cur := m.state.Current()
	if cur.Loading {
		return false
	}
	return cur.User.HasRole(name)
}

// HasAnyRole reports whether the current user carries any of the named roles.
func (m *SessionManager) HasAnyRole(names ...string) bool {
	cur := m.state.Current()
	if cur.Loading {
		return false
	}
	return cur.User.HasAnyRole(names...)
}

// IsOwner reports whether the current user owns the resource. Ownership
// is compared on the numeric user ID, the canonical identity field.
func (m *SessionManager) IsOwner(res domain.Owned) bool {
	cur := m.state.Current()
	if cur.Loading || cur.User == nil || res == nil {
		return false
	}
	return cur.User.ID == res.OwnerIdentity()
}

// IsMember reports whether the current user appears in the resource's
// member list.
func (m *SessionManager) IsMember(res domain.Membered) bool {
	cur := m.state.Current()
	if cur.Loading || cur.User == nil || res == nil {
		return false
	}
	for _, id := range res.MemberIdentities() {
		if id == cur.User.ID {
			return true
		}
	}
	return false
}
