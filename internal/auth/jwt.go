// Package auth provides JWT issuing/validation, password hashing, reset
// tokens, the Google OAuth provider, and the request authentication gate.
//
// AUTHENTICATION FLOW:
//  1. POST /auth/signup or /auth/login (or the Google OAuth callback)
//     verifies the user's identity and issues a signed JWT.
//  2. Clients send the token on every request as
//     "Authorization: Bearer <token>".
//  3. RequireAuth validates the token, loads the referenced user from the
//     database, and binds it to the request context.
//
// The token is stateless — everything needed to verify it (subject, expiry,
// signature) is inside it. There is no revocation list: a token stays valid
// until its natural expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL is the access token lifetime. Seven days matches the session
// length the API promises clients; after that, users log in again.
const tokenTTL = 7 * 24 * time.Hour

const issuer = "photovault"

// TokenService signs and verifies JWT access tokens with an HMAC secret.
// The same secret is used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The user's internal ID travels in the
// standard "sub" (Subject) claim.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for the given userID,
// valid for 7 days.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, tokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used by tests to mint already-expired or short-lived tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the userID from
// its Subject claim.
//
// All failure modes (malformed, expired, bad signature, wrong issuer)
// collapse into the same generic error so a caller probing the API cannot
// distinguish an expired token from a forged one.
//
// jwt.WithValidMethods pins the algorithm to HS256 — without it, a crafted
// token could claim a different algorithm and bypass signature checks.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", errors.New("auth: invalid or expired token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.Subject == "" {
		return "", errors.New("auth: invalid or expired token")
	}

	return c.Subject, nil
}
