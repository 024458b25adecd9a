package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"github.com/P-cyber162/PhotoVault-API/internal/auth"
	"github.com/P-cyber162/PhotoVault-API/internal/service"
)

// AuthHandler exposes signup/login, the password reset flow, and the
// Google OAuth flow.
type AuthHandler struct {
	auths  *service.AuthService
	google *auth.GoogleProvider // nil when OAuth is not configured
	logger *slog.Logger
}

func NewAuthHandler(auths *service.AuthService, google *auth.GoogleProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auths:  auths,
		google: google,
		logger: logger,
	}
}

// HandleSignUp registers a local account.
//
// HTTP: POST /api/v1/auth/signup
// Body: {"username","email","password"}
// 201 {"status":"success","token",...,"data":{"user":{...}}}
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auths.SignUp(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		Status: "success",
		Token:  result.Token,
		Data:   map[string]any{"user": result.User},
	})
}

// HandleLogin authenticates a local account.
//
// HTTP: POST /api/v1/auth/login
// Body: {"email","password"}
// 200 {"status":"success","token":...} | 400 missing fields | 401 bad credentials
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auths.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status: "success",
		Token:  result.Token,
	})
}

// HandleForgotPassword starts a password reset.
//
// HTTP: POST /api/v1/auth/forgot-password
// Body: {"email"}
//
// Responds with the same generic 200 whether or not the email exists.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auths.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "If that email exists, we sent a reset link!")
}

// HandleResetPassword consumes an emailed reset token.
//
// HTTP: POST /api/v1/auth/reset-password/{token}
// Body: {"newPassword"}
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auths.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successful")
}

// HandleGoogleLogin redirects the browser to Google's authorization page.
//
// HTTP: GET /api/v1/auth/google
//
// A random state value goes into a short-lived HttpOnly cookie; the
// callback requires the same value back, which blocks CSRF'd completions
// of an attacker-initiated OAuth flow.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth login flow.
//
// HTTP: GET /api/v1/auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state missing or mismatched")
		writeJSON(w, http.StatusBadRequest, envelope{Status: "fail", Message: "invalid OAuth state"})
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: user denied authorization", slog.String("error", errParam))
		writeJSON(w, http.StatusBadRequest, envelope{Status: "fail", Message: "OAuth failed"})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Status: "fail", Message: "missing OAuth code"})
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, envelope{Status: "fail", Message: "OAuth failed"})
		return
	}

	result, err := h.auths.LoginOrRegisterGoogle(r.Context(), gUser)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status: "success",
		Token:  result.Token,
		Data:   map[string]any{"user": result.User},
	})
}
