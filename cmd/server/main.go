// Package main is the entry point for the PhotoVault API server.
//
// Its job is to read configuration from the environment, build the
// environment-specific dependencies (object store, mailer, OAuth
// provider), and hand everything to internal/server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/P-cyber162/PhotoVault-API/internal/auth"
	"github.com/P-cyber162/PhotoVault-API/internal/mail"
	"github.com/P-cyber162/PhotoVault-API/internal/server"
	"github.com/P-cyber162/PhotoVault-API/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if err := run(logger); err != nil {
		logger.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid PORT value %q", portStr)
		}
		port = p
	}

	dbPath := "data/photovault.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	// JWT_SECRET must be a long random string, e.g.
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", port)
	}

	// Object storage is required: every upload goes through it.
	store, err := storage.NewS3Store(context.Background(), storage.S3Config{
		Endpoint:      os.Getenv("S3_ENDPOINT"),
		Region:        envOr("S3_REGION", "us-east-1"),
		Bucket:        os.Getenv("S3_BUCKET"),
		AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("S3_SECRET_KEY"),
		PublicBaseURL: os.Getenv("S3_PUBLIC_URL"),
	})
	if err != nil {
		return fmt.Errorf("configuring object storage: %w", err)
	}

	// SMTP is optional; without it reset links are logged instead of sent.
	var mailer mail.Mailer
	smtpMailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host: os.Getenv("SMTP_HOST"),
		Port: os.Getenv("SMTP_PORT"),
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
	})
	if err != nil {
		logger.Warn("SMTP not configured, password reset links will be logged")
		mailer = &mail.LogMailer{Logger: logger}
	} else {
		mailer = smtpMailer
	}

	// Google OAuth is optional; without it the /auth/google routes are
	// not registered.
	var google *auth.GoogleProvider
	googleID := os.Getenv("GOOGLE_CLIENT_ID")
	googleSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if googleID != "" && googleSecret != "" {
		callback := os.Getenv("GOOGLE_CALLBACK_URL")
		if callback == "" {
			callback = baseURL + "/api/v1/auth/google/callback"
		}
		google = auth.NewGoogleProvider(googleID, googleSecret, callback)
	} else {
		logger.Warn("Google OAuth not configured, /auth/google routes disabled")
	}

	srv, err := server.New(server.Config{
		Port:      port,
		DBPath:    dbPath,
		JWTSecret: jwtSecret,
		BaseURL:   baseURL,
	}, store, mailer, google, logger)
	if err != nil {
		return err
	}

	return srv.Start()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
