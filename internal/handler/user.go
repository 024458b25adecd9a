package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/P-cyber162/PhotoVault-API/internal/auth"
	"github.com/P-cyber162/PhotoVault-API/internal/service"
)

// UserHandler exposes the admin user-management surface.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleList returns all users (admin only).
//
// HTTP: GET /api/v1/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())
	limit, offset := pagination(r)

	users, err := h.users.List(r.Context(), caller, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCollection(w, "users", len(users), users)
}

// HandleGet returns one user by username (admin only).
//
// HTTP: GET /api/v1/users/{username}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	user, err := h.users.GetByUsername(r.Context(), caller, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "user", user)
}

// HandleDelete removes a user: admins may delete anyone, a regular user
// only their own record.
//
// HTTP: DELETE /api/v1/users/{username}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	user, err := h.users.DeleteByUsername(r.Context(), caller, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "user", user)
}
