package domain

// Well-known role names. Membership is checked by name.
const (
	RoleAdmin      = "Admin"
	RoleSuperAdmin = "SuperAdmin"
)

// Role is a named permission group attached to a user. Authorization
// decisions compare the Name, never the numeric ID.
type Role struct {
	ID          uint   `json:"ID"`
	Name        string `json:"Name"`
	Description string `json:"description,omitempty"`
}

// User is an immutable snapshot of the authenticated identity as returned
// by the marketplace API. Updating the user always replaces the whole
// value, fields are never mutated in place.
type User struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Roles     []Role `json:"roles"`
}

// HasRole reports whether the user carries a role with the given name.
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user carries at least one of the named roles.
func (u *User) HasAnyRole(names ...string) bool {
	for _, n := range names {
		if u.HasRole(n) {
			return true
		}
	}
	return false
}

// DisplayName returns a human-readable name, falling back to the username
// when no first/last name is set.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// Owned is implemented by resources that belong to a single user.
type Owned interface {
	OwnerIdentity() uint
}

// Membered is implemented by resources with a member/employee list.
type Membered interface {
	MemberIdentities() []uint
}
