package model

import (
	"fmt"
	"strings"
	"time"
)

// Role classifies what a user is allowed to do.  Requesters carry the
// USER role, fulfilment personnel carry STAFF and overseers carry
// ADMIN.  The role is embedded in the JWT issued at login and checked
// by middleware and by the engine on every mutating call.
type Role string

const (
	RoleAdmin Role = "ADMIN" // oversees requests, confirms bookings
	RoleStaff Role = "STAFF" // fulfils assigned requests
	RoleUser  Role = "USER"  // submits requests and bookings
)

// ParseRole normalizes a free-form role string into a Role.  Unknown
// values are rejected so that string-typed roles never leak past the
// boundary.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStaff:
		return RoleStaff, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Actor is the identity acting on an engine operation.  It is built
// from the verified JWT claims by the HTTP layer and passed explicitly
// into every engine call; the engine never re-derives a role from
// ambient state.
//
// Fields:
//
//	ID         – user id of the caller.
//	Role       – role claim of the caller.
//	Name       – display name, used when authoring remarks.
//	Department – department of the caller, used for filtering.
type Actor struct {
	ID         uint64
	Role       Role
	Name       string
	Department string
}

// User represents an application user record as stored in the `users`
// table.  Users double as the staff directory: rows with role STAFF
// or ADMIN are valid assignment targets.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name shown on requests and remarks.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – ADMIN, STAFF or USER.
//	Department   – free-form department label.
//	Phone        – contact phone number.
//	IsActive     – whether the account is active.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	Department   string    // users.department
	Phone        string    // users.phone
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// StaffMember is the directory entry exposed to assignment UIs.  It
// carries only the fields needed to pick an assignee.
type StaffMember struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only
// the SHA-256 hash of the raw token is stored.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
