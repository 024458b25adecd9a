// Package service contains the business logic layer.
//
// Handlers parse HTTP and write responses; services validate input,
// enforce the authorization policy, and orchestrate repositories and
// external collaborators (object store, mailer). Services accept
// primitives and return domain errors — they have no knowledge of HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/P-cyber162/PhotoVault-API/internal/apperror"
	"github.com/P-cyber162/PhotoVault-API/internal/auth"
	"github.com/P-cyber162/PhotoVault-API/internal/mail"
	"github.com/P-cyber162/PhotoVault-API/internal/model"
	"github.com/P-cyber162/PhotoVault-API/internal/repository"
)

const maxUsernameLength = 50

// AuthService handles signup, login, the Google OAuth upsert, and the
// password reset flow.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	mailer    mail.Mailer
	validate  *validator.Validate
	baseURL   string // public base URL, used to build reset links
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// baseURL is the externally visible origin (e.g. "https://api.example.com")
// used to construct password-reset links.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	mailer mail.Mailer,
	baseURL string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		mailer:    mailer,
		validate:  validator.New(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
	}
}

// AuthResult bundles the user record with the issued token so the handler
// can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// SignUp registers a local account and issues a token.
//
// The plaintext password exists only in this call frame: it is hashed
// before the user struct is built and never logged.
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return nil, apperror.ValidationFailed("username", "a username must be provided")
	}
	if len(username) > maxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", maxUsernameLength))
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperror.ValidationFailed("email", "a valid email must be provided")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing signup password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies email + password and issues a token.
//
// The failure message is identical whether the email is unknown or the
// password is wrong — a login probe must not reveal which field failed.
// The bcrypt compare still runs against a dummy hash when the email is
// unknown, so response timing doesn't become the oracle instead.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "please provide your email and password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.Verify(dummyHash, password)
			return nil, apperror.Unauthorized("incorrect email or password")
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("incorrect email or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// dummyHash is a bcrypt hash of an unguessable value, used to equalize
// login timing when the email doesn't exist.
const dummyHash = "$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ForgotPassword starts the reset flow.
//
// The outcome is success-shaped regardless of whether the email exists —
// account enumeration via this endpoint must not be possible. When the
// account does exist, a fresh token replaces any earlier pending one.
// A mail delivery failure is logged but still reported as success; the
// stored token remains valid, so support can resend without a new request.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperror.ValidationFailed("email", "an email must be provided")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service/auth: looking up %s for reset: %w", email, err)
	}

	raw, hash, err := auth.NewResetToken()
	if err != nil {
		return fmt.Errorf("service/auth: %w", err)
	}

	expires := time.Now().Add(auth.ResetTokenTTL)
	user.ResetTokenHash = &hash
	user.ResetTokenExpires = &expires

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("service/auth: storing reset token for %s: %w", user.ID, err)
	}

	resetURL := fmt.Sprintf("%s/api/v1/auth/reset-password/%s", s.baseURL, raw)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		s.logger.Error("password reset mail failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
	} else {
		s.logger.Info("password reset requested", slog.String("userID", user.ID))
	}

	return nil
}

// ResetPassword consumes a reset token.
//
// The new password is validated before any lookup. The token matches only
// if its sha256 is on a user record with an unexpired window; consuming it
// clears both token fields, so a second presentation of the same token
// fails with the same invalid-or-expired error as a forged one.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return apperror.ValidationFailed("token", "reset token is required")
	}
	if len(newPassword) < auth.MinPasswordLength {
		return apperror.ValidationFailed("newPassword",
			fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	user, err := s.users.GetByResetTokenHash(ctx, auth.HashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("token", "invalid or expired reset token")
		}
		return fmt.Errorf("service/auth: looking up reset token: %w", err)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/auth: hashing reset password: %w", err)
	}

	user.PasswordHash = hash
	user.ResetTokenHash = nil
	user.ResetTokenExpires = nil

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("service/auth: saving reset password for %s: %w", user.ID, err)
	}

	s.logger.Info("password reset completed", slog.String("userID", user.ID))
	return nil
}

// LoginOrRegisterGoogle handles the Google OAuth callback: find the
// account by verified email, or create one on first login. OAuth-created
// accounts get a random password hash no one can log in with locally.
func (s *AuthService) LoginOrRegisterGoogle(ctx context.Context, gUser *auth.GoogleUser) (*AuthResult, error) {
	if gUser == nil {
		return nil, fmt.Errorf("service/auth: Google user must not be nil")
	}

	email := strings.ToLower(gUser.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
		}

		user, err = s.createGoogleUser(ctx, gUser, email)
		if err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via Google", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) createGoogleUser(ctx context.Context, gUser *auth.GoogleUser, email string) (*model.User, error) {
	username := strings.TrimSpace(gUser.Name)
	if username == "" {
		username = "Google User"
	}

	// The local-password slot must hold something unguessable; OAuth users
	// who want a password go through the reset flow.
	unusable, err := s.passwords.Hash(xid.New().String() + gUser.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing placeholder password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: unusable,
		Role:         model.RoleUser,
	}

	err = s.users.Create(ctx, user)
	if errors.Is(err, apperror.ErrConflict) {
		// Display-name collision with an existing username. Retry once
		// with a unique suffix.
		user.Username = username + "-" + xid.New().String()
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered via Google",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}
