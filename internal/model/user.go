// Package model defines the data structures used throughout the application.
package model

import "time"

// Roles a user account can hold. Role gates the admin-only endpoints
// (user listing) and widens delete permissions on photos.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
//
// PasswordHash is tagged `json:"-"` so it can never leak through a JSON
// response, no matter which handler serializes the user. The reset token
// fields hold only the sha256 of the emailed token — the raw value exists
// solely in the reset email. Both are pointers because they are absent for
// any user without a pending reset, and both are cleared together when a
// reset is consumed.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	Role         string    `json:"role"      db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	ResetTokenHash    *string    `json:"-" db:"reset_token_hash"`
	ResetTokenExpires *time.Time `json:"-" db:"reset_token_expires"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
