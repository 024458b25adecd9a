package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ResetTokenTTL is how long an emailed reset token stays valid.
const ResetTokenTTL = time.Hour

// NewResetToken generates a high-entropy password-reset token.
//
// The raw value is emailed to the user and never persisted; only its
// sha256 is stored on the user record. Verifying a presented token is then
// a hash-and-compare — a database leak does not expose usable tokens.
func NewResetToken() (raw, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("auth: generating reset token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, HashResetToken(raw), nil
}

// HashResetToken returns the hex sha256 of a raw reset token, the form in
// which tokens are stored and looked up.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
