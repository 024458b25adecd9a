package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/P-cyber162/PhotoVault-API/internal/model"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the current-user value.
type contextKey string

const currentUserKey contextKey = "currentUser"

// UserLoader is the slice of the user repository the gate needs: resolving
// a token subject to a live account. Declared here (consumer side) so the
// middleware doesn't depend on the repository package.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth enforces authentication on protected routes.
//
// It extracts the token from the "Authorization: Bearer <token>" header,
// validates it, and loads the referenced user from the database. Loading
// the user (rather than trusting the token's subject blindly) means tokens
// held by deleted accounts stop working immediately.
//
// On success the full *model.User is bound to the request context for
// handlers and services; on any failure the chain stops with a 401 fail
// envelope. The failure body is identical for a missing header, a bad
// signature, an expired token, and a deleted account.
func RequireAuth(tokens *TokenService, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, tokens, users)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), currentUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser retrieves the authenticated user from the request context.
// Returns (nil, false) if the request did not pass through RequireAuth.
func CurrentUser(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(currentUserKey).(*model.User)
	return u, ok && u != nil
}

// WithUser returns a context carrying the given user. Exported for handler
// tests that exercise protected endpoints without the full middleware chain.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

func resolveUser(r *http.Request, tokens *TokenService, users UserLoader) (*model.User, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, errNoToken
	}

	userID, err := tokens.Validate(strings.TrimPrefix(header, prefix))
	if err != nil {
		return nil, err
	}

	// The account behind a syntactically valid token may have been deleted.
	return users.GetByID(r.Context(), userID)
}

var errNoToken = &noTokenError{}

type noTokenError struct{}

func (*noTokenError) Error() string { return "auth: missing bearer token" }

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"status":"fail","message":"You are not logged in! Please log in to gain access"}`))
}
