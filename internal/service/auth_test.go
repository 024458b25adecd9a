package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/P-cyber162/PhotoVault-API/internal/apperror"
	"github.com/P-cyber162/PhotoVault-API/internal/auth"
)

func newAuthTestService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeMailer) {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatalf("setup: NewTokenService() error = %v", err)
	}

	users := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := NewAuthService(users, tokens, auth.NewPasswordServiceForTest(4), mailer,
		"http://localhost:8080", testLogger())
	return svc, users, mailer
}

func mustSignUp(t *testing.T, svc *AuthService, username, email, password string) *AuthResult {
	t.Helper()
	result, err := svc.SignUp(context.Background(), username, email, password)
	if err != nil {
		t.Fatalf("setup: SignUp() error = %v", err)
	}
	return result
}

func TestSignUp_Success(t *testing.T) {
	svc, users, _ := newAuthTestService(t)

	result, err := svc.SignUp(context.Background(), "alice", "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	if result.User.ID == "" {
		t.Error("expected user to have an ID")
	}
	if result.User.Role != "user" {
		t.Errorf("Role = %q, want %q", result.User.Role, "user")
	}
	if result.Token == "" {
		t.Error("expected a token")
	}

	stored, err := users.GetByID(context.Background(), result.User.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.PasswordHash == "password123" {
		t.Error("password stored in plaintext")
	}
	if stored.PasswordHash == "" {
		t.Error("password hash missing")
	}
}

func TestSignUp_NormalizesEmail(t *testing.T) {
	svc, _, _ := newAuthTestService(t)

	result := mustSignUp(t, svc, "alice", "  Alice@Example.COM  ", "password123")
	if result.User.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lowercased/trimmed", result.User.Email)
	}
}

func TestSignUp_Validation(t *testing.T) {
	svc, _, _ := newAuthTestService(t)

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "", "a@example.com", "password123"},
		{"bad email", "alice", "not-an-email", "password123"},
		{"short password", "alice", "a@example.com", "short"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), tc.username, tc.email, tc.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthTestService(t)
	mustSignUp(t, svc, "alice", "alice@example.com", "password123")

	_, err := svc.SignUp(context.Background(), "alice2", "alice@example.com", "password123")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := newAuthTestService(t)
	signedUp := mustSignUp(t, svc, "alice", "alice@example.com", "password123")

	result, err := svc.Login(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != signedUp.User.ID {
		t.Errorf("logged in as %s, want %s", result.User.ID, signedUp.User.ID)
	}
	if result.Token == "" {
		t.Error("expected a token")
	}
}

// A login probe must not learn whether the email or the password was
// wrong: both failures produce the identical error.
func TestLogin_GenericFailure(t *testing.T) {
	svc, _, _ := newAuthTestService(t)
	mustSignUp(t, svc, "alice", "alice@example.com", "password123")

	_, errWrongPassword := svc.Login(context.Background(), "alice@example.com", "wrong-password")
	_, errUnknownEmail := svc.Login(context.Background(), "nobody@example.com", "password123")

	if !errors.Is(errWrongPassword, apperror.ErrUnauthorized) {
		t.Errorf("wrong password error = %v, want ErrUnauthorized", errWrongPassword)
	}
	if !errors.Is(errUnknownEmail, apperror.ErrUnauthorized) {
		t.Errorf("unknown email error = %v, want ErrUnauthorized", errUnknownEmail)
	}
	if errWrongPassword.Error() != errUnknownEmail.Error() {
		t.Errorf("failure messages differ: %q vs %q — reveals which field failed",
			errWrongPassword.Error(), errUnknownEmail.Error())
	}
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _, _ := newAuthTestService(t)

	_, err := svc.Login(context.Background(), "", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestForgotPassword_UnknownEmailLooksLikeSuccess(t *testing.T) {
	svc, _, mailer := newAuthTestService(t)

	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("ForgotPassword() error = %v, want nil for unknown email", err)
	}
	if len(mailer.sentTo) != 0 {
		t.Error("no mail should be sent for an unknown email")
	}
}

func TestForgotPassword_StoresHashNotRawToken(t *testing.T) {
	svc, users, mailer := newAuthTestService(t)
	signedUp := mustSignUp(t, svc, "alice", "alice@example.com", "password123")

	if err := svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}

	if len(mailer.urls) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mailer.urls))
	}
	raw := resetTokenFromURL(t, mailer.urls[0])

	stored, err := users.GetByID(context.Background(), signedUp.User.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.ResetTokenHash == nil || stored.ResetTokenExpires == nil {
		t.Fatal("reset token fields not stored")
	}
	if *stored.ResetTokenHash == raw {
		t.Error("raw token stored; only its hash may be persisted")
	}
	if auth.HashResetToken(raw) != *stored.ResetTokenHash {
		t.Error("stored hash does not match the emailed token")
	}
}

func TestForgotPassword_MailFailureStillSucceeds(t *testing.T) {
	svc, _, mailer := newAuthTestService(t)
	mailer.failAll = true
	mustSignUp(t, svc, "alice", "alice@example.com", "password123")

	if err := svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Errorf("ForgotPassword() error = %v, want nil despite mail failure", err)
	}
}

func TestResetPassword_FullFlow(t *testing.T) {
	svc, _, mailer := newAuthTestService(t)
	mustSignUp(t, svc, "alice", "alice@example.com", "password123")

	if err := svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	raw := resetTokenFromURL(t, mailer.urls[0])

	if err := svc.ResetPassword(context.Background(), raw, "new-password-9"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	// Old password dead, new one works.
	if _, err := svc.Login(context.Background(), "alice@example.com", "password123"); err == nil {
		t.Error("old password should no longer log in")
	}
	if _, err := svc.Login(context.Background(), "alice@example.com", "new-password-9"); err != nil {
		t.Errorf("new password login error = %v", err)
	}
}

func TestResetPassword_TokenIsSingleUse(t *testing.T) {
	svc, _, mailer := newAuthTestService(t)
	mustSignUp(t, svc, "alice", "alice@example.com", "password123")

	if err := svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	raw := resetTokenFromURL(t, mailer.urls[0])

	if err := svc.ResetPassword(context.Background(), raw, "new-password-9"); err != nil {
		t.Fatalf("first ResetPassword() error = %v", err)
	}

	err := svc.ResetPassword(context.Background(), raw, "another-password")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("second use error = %v, want ErrValidation", err)
	}
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	svc, users, mailer := newAuthTestService(t)
	signedUp := mustSignUp(t, svc, "alice", "alice@example.com", "password123")

	if err := svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	raw := resetTokenFromURL(t, mailer.urls[0])

	// Age the token past its window.
	stored, err := users.GetByID(context.Background(), signedUp.User.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	expired := time.Now().Add(-time.Minute)
	stored.ResetTokenExpires = &expired
	if err := users.Update(context.Background(), stored); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if err := svc.ResetPassword(context.Background(), raw, "new-password-9"); err == nil {
		t.Error("ResetPassword() should reject an expired token")
	}
}

func TestResetPassword_ShortPasswordCheckedFirst(t *testing.T) {
	svc, _, _ := newAuthTestService(t)

	err := svc.ResetPassword(context.Background(), "whatever-token", "short")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "at least") {
		t.Errorf("error %q should complain about password length, not the token", err)
	}
}

func TestLoginOrRegisterGoogle_CreatesThenReuses(t *testing.T) {
	svc, _, _ := newAuthTestService(t)

	gUser := &auth.GoogleUser{ID: "g-1", Email: "Bob@Example.com", Name: "Bob"}

	first, err := svc.LoginOrRegisterGoogle(context.Background(), gUser)
	if err != nil {
		t.Fatalf("LoginOrRegisterGoogle() error = %v", err)
	}
	if first.User.Email != "bob@example.com" {
		t.Errorf("Email = %q, want lowercased", first.User.Email)
	}
	if first.Token == "" {
		t.Error("expected a token")
	}

	second, err := svc.LoginOrRegisterGoogle(context.Background(), gUser)
	if err != nil {
		t.Fatalf("second LoginOrRegisterGoogle() error = %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Errorf("second login created a new user %s, want %s", second.User.ID, first.User.ID)
	}
}

func TestLoginOrRegisterGoogle_UsernameCollision(t *testing.T) {
	svc, _, _ := newAuthTestService(t)
	mustSignUp(t, svc, "Bob", "taken@example.com", "password123")

	result, err := svc.LoginOrRegisterGoogle(context.Background(),
		&auth.GoogleUser{ID: "g-2", Email: "bob@gmail.com", Name: "Bob"})
	if err != nil {
		t.Fatalf("LoginOrRegisterGoogle() error = %v", err)
	}
	if result.User.Username == "Bob" {
		t.Error("collision should have produced a suffixed username")
	}
	if !strings.HasPrefix(result.User.Username, "Bob-") {
		t.Errorf("Username = %q, want Bob- prefix", result.User.Username)
	}
}

func TestGoogleUser_CannotLoginLocally(t *testing.T) {
	svc, _, _ := newAuthTestService(t)

	_, err := svc.LoginOrRegisterGoogle(context.Background(),
		&auth.GoogleUser{ID: "g-3", Email: "carol@gmail.com", Name: "Carol"})
	if err != nil {
		t.Fatalf("LoginOrRegisterGoogle() error = %v", err)
	}

	// The placeholder hash matches no guessable password.
	for _, guess := range []string{"", "g-3", "Carol", "password"} {
		if _, err := svc.Login(context.Background(), "carol@gmail.com", guess); err == nil {
			t.Errorf("local login succeeded with guess %q", guess)
		}
	}
}

// resetTokenFromURL pulls the raw token off a reset link of the form
// http://host/api/v1/auth/reset-password/<token>.
func resetTokenFromURL(t *testing.T, url string) string {
	t.Helper()
	i := strings.LastIndex(url, "/")
	if i < 0 || i == len(url)-1 {
		t.Fatalf("malformed reset URL %q", url)
	}
	return url[i+1:]
}
