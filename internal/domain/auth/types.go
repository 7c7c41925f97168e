package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents a dashboard user's authorization role.
// The string form is the wire representation shared with the user store.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleTeacher      Role = "teacher"
	RoleParent       Role = "parent"
	RoleStudent      Role = "student"
	RoleOrganization Role = "organization"
)

// Roles returns every member of the closed role set.
func Roles() []Role {
	return []Role{RoleAdmin, RoleTeacher, RoleParent, RoleStudent, RoleOrganization}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleParent, RoleStudent, RoleOrganization:
		return true
	default:
		return false
	}
}

// ParseRole converts a stored role value into a Role.
// Surrounding whitespace and case are ignored; anything outside the enum is an error.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// UnmarshalText implements encoding.TextUnmarshaler so roles can be read from config and JSON.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Principal is the resolved caller for the current request.
type Principal struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Identity is what an identity provider asserts about a verified token.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject   string    // provider-assigned user id, keys the user store
	Email     string    // optional; the user store stays authoritative
	ExpiresAt time.Time // validity horizon of the presented token
}

// Session is the server-side record persisted by the cookie-session login flow.
// ID is the opaque value carried in the session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }
