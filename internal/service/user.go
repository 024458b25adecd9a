package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/P-cyber162/PhotoVault-API/internal/apperror"
	"github.com/P-cyber162/PhotoVault-API/internal/auth"
	"github.com/P-cyber162/PhotoVault-API/internal/model"
	"github.com/P-cyber162/PhotoVault-API/internal/repository"
)

// UserService covers the admin-facing user management surface.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// List returns all users. Admin only.
func (s *UserService) List(ctx context.Context, caller *model.User, limit, offset int) ([]model.User, error) {
	if !auth.IsAdmin(caller) {
		return nil, apperror.Forbidden("you do not have permission to perform this action")
	}

	users, err := s.users.List(ctx, clampList(limit, offset))
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return users, nil
}

// GetByUsername returns one user record. Admin only.
func (s *UserService) GetByUsername(ctx context.Context, caller *model.User, username string) (*model.User, error) {
	if !auth.IsAdmin(caller) {
		return nil, apperror.Forbidden("you do not have permission to perform this action")
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	return s.users.GetByUsername(ctx, username)
}

// DeleteByUsername removes an account. Admins may delete anyone; a
// regular user may delete only their own record.
func (s *UserService) DeleteByUsername(ctx context.Context, caller *model.User, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	if !auth.IsAdmin(caller) && caller.Username != username {
		return nil, apperror.Forbidden("you do not have permission to perform this action")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return nil, err
	}

	s.logger.Info("user deleted",
		slog.String("userID", user.ID),
		slog.String("by", caller.ID),
	)

	return user, nil
}
