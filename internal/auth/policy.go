package auth

import (
	"slices"

	"github.com/P-cyber162/PhotoVault-API/internal/model"
)

// Authorization predicates. These run after authentication — the caller is
// always a real, loaded user. Services compose them per operation:
// photo delete is owner-or-admin, album mutation is owner-only, user
// listing is admin-only.

// IsOwner reports whether the user owns the resource with the given owner ID.
func IsOwner(ownerID string, user *model.User) bool {
	return user != nil && ownerID == user.ID
}

// IsAdmin reports whether the user holds the admin role.
func IsAdmin(user *model.User) bool {
	return user != nil && user.IsAdmin()
}

// RoleAllowed reports whether the user's role is in the allow-list.
func RoleAllowed(user *model.User, roles ...string) bool {
	return user != nil && slices.Contains(roles, user.Role)
}
