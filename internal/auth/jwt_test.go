package auth

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-16-chars"

func newTestTokens(t *testing.T) *TokenService {
	t.Helper()
	tokens, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return tokens
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Fatal("NewTokenService() should reject a short secret")
	}
}

func TestGenerateValidate_RoundTrip(t *testing.T) {
	tokens := newTestTokens(t)

	signed, err := tokens.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	userID, err := tokens.Validate(signed)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want %q", userID, "user-123")
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	tokens := newTestTokens(t)

	signed, err := tokens.GenerateWithDuration("user-123", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := tokens.Validate(signed); err == nil {
		t.Fatal("Validate() should reject an expired token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	tokens := newTestTokens(t)
	other, err := NewTokenService("a-completely-different-secret")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	signed, err := other.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := tokens.Validate(signed); err == nil {
		t.Fatal("Validate() should reject a token signed with another secret")
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	tokens := newTestTokens(t)

	signed, err := tokens.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := tokens.Validate(tampered); err == nil {
		t.Fatal("Validate() should reject a tampered token")
	}
}

func TestValidate_Garbage(t *testing.T) {
	tokens := newTestTokens(t)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tokens.Validate(input); err == nil {
			t.Errorf("Validate(%q) should fail", input)
		}
	}
}
