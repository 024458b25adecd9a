// Package server wires the HTTP surface: router, middleware stack, route
// definitions, and graceful shutdown. It is the composition root — every
// service and handler is assembled here from the dependencies main.go
// provides.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/P-cyber162/PhotoVault-API/internal/auth"
	"github.com/P-cyber162/PhotoVault-API/internal/handler"
	"github.com/P-cyber162/PhotoVault-API/internal/mail"
	"github.com/P-cyber162/PhotoVault-API/internal/middleware"
	sqliteRepo "github.com/P-cyber162/PhotoVault-API/internal/repository/sqlite"
	"github.com/P-cyber162/PhotoVault-API/internal/service"
	"github.com/P-cyber162/PhotoVault-API/internal/storage"
)

// Rate limit buckets, per client IP.
const (
	apiRateLimit    = 100 // per 15 minutes, everything under /api
	authRateLimit   = 5   // per hour, login and signup
	resetRateLimit  = 3   // per hour, the password reset pair
	apiRateWindow   = 15 * time.Minute
	authRateWindow  = time.Hour
	resetRateWindow = time.Hour
)

// Config holds server configuration assembled in main.go from the
// environment.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	// BaseURL is the externally visible origin used in password-reset
	// links, e.g. "https://api.example.com".
	BaseURL string
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, token/password
// services, domain services, handlers, and routes.
//
// The object store and mailer are passed in because their construction is
// environment-specific; google may be nil, in which case the OAuth routes
// are not registered.
func New(
	cfg Config,
	store storage.ObjectStore,
	mailer mail.Mailer,
	google *auth.GoogleProvider,
	logger *slog.Logger,
) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes(tokens, store, mailer, google)
	return s, nil
}

// Router exposes the configured router for httptest-based tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(
	tokens *auth.TokenService,
	store storage.ObjectStore,
	mailer mail.Mailer,
	google *auth.GoogleProvider,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	users := s.db.Users()
	photos := s.db.Photos()
	albums := s.db.Albums()

	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(users, tokens, passwords, mailer, s.config.BaseURL, s.logger)
	photoService := service.NewPhotoService(photos, store, s.logger)
	albumService := service.NewAlbumService(albums, photos, s.logger)
	uploadService := service.NewUploadService(photos, albums, store, s.logger)
	userService := service.NewUserService(users, s.logger)

	authHandler := handler.NewAuthHandler(authService, google, s.logger)
	photoHandler := handler.NewPhotoHandler(photoService)
	albumHandler := handler.NewAlbumHandler(albumService)
	uploadHandler := handler.NewUploadHandler(uploadService, photoService)
	userHandler := handler.NewUserHandler(userService)

	requireAuth := auth.RequireAuth(tokens, users)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(apiRateLimit, apiRateWindow))

		r.Route("/auth", func(r chi.Router) {
			// Credential endpoints get the tightest bucket: they are
			// the ones worth brute-forcing.
			r.Group(func(r chi.Router) {
				r.Use(httprate.LimitByIP(authRateLimit, authRateWindow))
				r.Post("/signup", authHandler.HandleSignUp)
				r.Post("/login", authHandler.HandleLogin)
			})

			r.Group(func(r chi.Router) {
				r.Use(httprate.LimitByIP(resetRateLimit, resetRateWindow))
				r.Post("/forgot-password", authHandler.HandleForgotPassword)
				r.Post("/reset-password/{token}", authHandler.HandleResetPassword)
			})

			if google != nil {
				r.Get("/google", authHandler.HandleGoogleLogin)
				r.Get("/google/callback", authHandler.HandleGoogleCallback)
			}
		})

		r.Route("/photos", func(r chi.Router) {
			// The public feed is the only open photo surface; reading a
			// single photo requires a login even when the photo is public.
			r.Get("/public", photoHandler.HandleListPublic)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/my-photos", photoHandler.HandleListMine)
				r.Get("/{id}", photoHandler.HandleGet)
				r.Patch("/{id}", photoHandler.HandleUpdate)
				r.Delete("/{id}", photoHandler.HandleDelete)
			})
		})

		r.Route("/albums", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", albumHandler.HandleCreate)
			r.Get("/", albumHandler.HandleListMine)
			r.Get("/{id}", albumHandler.HandleGet)
			r.Patch("/{id}", albumHandler.HandleUpdate)
			r.Delete("/{id}", albumHandler.HandleDelete)
			r.Post("/{id}/photos", albumHandler.HandleAddPhoto)
		})

		r.Route("/upload", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/single", uploadHandler.HandleSingle)
			r.Post("/multiple", uploadHandler.HandleMultiple)
			// Object keys contain a slash, so deletion takes the key as
			// the rest of the path.
			r.Delete("/*", uploadHandler.HandleDeleteByKey)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", userHandler.HandleList)
			r.Get("/{username}", userHandler.HandleGet)
			r.Delete("/{username}", userHandler.HandleDelete)
		})
	})
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // batch uploads push payloads to object storage
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
