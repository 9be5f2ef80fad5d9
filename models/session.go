package models

import "time"

// Role values carried by sessions and user records. Endpoints declare the
// set of roles allowed to call them; RoleAny and RoleNone are pseudo-roles
// used only in those declarations.
const (
	RoleAdmin     = "admin"
	RoleReceiver  = "receiver"
	RoleCustodian = "custodian"

	// RoleAny allows any caller, authenticated or not.
	RoleAny = "*"

	// RoleNone requires the caller to NOT be authenticated. Endpoints such
	// as submission finalization are reserved for anonymous callers.
	RoleNone = "unauthenticated"
)

// Session is an ephemeral server-side authentication record. Sessions are
// owned exclusively by the session store: they are created at login,
// destroyed on logout, on expiry, or when a newer session for the same user
// is created (single active session per user).
type Session struct {
	// ID is the opaque random token conveyed by the client in the
	// X-Session header. It is the only part of the session the client sees.
	ID string `json:"id"`

	// TenantID scopes the session to one tenant. A session presented
	// against a different tenant is treated as absent.
	TenantID int64 `json:"-"`

	// UserID identifies the authenticated user.
	UserID string `json:"user_id"`

	// Role is the user's role at login time (admin, receiver, custodian).
	Role string `json:"role"`

	// Status is the user's account status at login time.
	Status string `json:"status"`

	// AuthContext is an opaque pointer to additional authentication
	// context (e.g. a decrypted key container) attached at login.
	// Never serialized.
	AuthContext any `json:"-"`

	// CreatedAt is the session creation time. Expiry is fixed from this
	// point; it does not slide on use.
	CreatedAt time.Time `json:"-"`

	// ExpiresAt is the instant after which the session is treated as
	// absent, independent of the background sweep.
	ExpiresAt time.Time `json:"expiration_date"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
