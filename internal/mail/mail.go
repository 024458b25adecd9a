// Package mail delivers transactional email. The only message the API
// sends today is the password-reset link.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Mailer is the interface the auth service depends on. Tests substitute a
// fake that captures the reset URL instead of sending anything.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
}

// SMTPMailer sends mail over a plain-auth SMTP relay.
type SMTPMailer struct {
	config SMTPConfig
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == "" || cfg.User == "" || cfg.Pass == "" {
		return nil, fmt.Errorf("mail: smtp not configured")
	}
	return &SMTPMailer{config: cfg}, nil
}

// SendPasswordReset emails the raw reset link. The link embeds the raw
// token — this is the only place it ever leaves the process.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	subject := "Password Reset Request"
	body := fmt.Sprintf(
		"You requested a password reset. Open the link below to choose a new password:\r\n\r\n"+
			"%s\r\n\r\n"+
			"This link expires in 1 hour. If you didn't request this, ignore this email.\r\n",
		resetURL,
	)

	msg := "From: " + m.config.User + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body

	addr := m.config.Host + ":" + m.config.Port
	auth := smtp.PlainAuth("", m.config.User, m.config.Pass, m.config.Host)

	if err := smtp.SendMail(addr, auth, m.config.User, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("mail: sending password reset to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes the reset link to the log instead of sending it. It is
// the fallback when SMTP is not configured, so local development does not
// need a relay to exercise the reset flow.
type LogMailer struct {
	Logger *slog.Logger
}

var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	m.Logger.Info("password reset requested (smtp not configured, link logged only)",
		slog.String("to", to),
		slog.String("url", resetURL),
	)
	return nil
}
