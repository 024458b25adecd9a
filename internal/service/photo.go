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
	"github.com/P-cyber162/PhotoVault-API/internal/storage"
)

const (
	MaxTitleLength   = 200
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// PhotoService handles the photo lifecycle and its visibility policy.
// Creation happens in UploadService (store write first); this service
// covers reads, metadata updates, and deletion.
type PhotoService struct {
	photos repository.PhotoRepository
	store  storage.ObjectStore
	logger *slog.Logger
}

func NewPhotoService(photos repository.PhotoRepository, store storage.ObjectStore, logger *slog.Logger) *PhotoService {
	return &PhotoService{
		photos: photos,
		store:  store,
		logger: logger,
	}
}

// ListPublic returns public photos, newest first. No authentication —
// public visibility is a public-read capability.
func (s *PhotoService) ListPublic(ctx context.Context, limit, offset int) ([]model.Photo, error) {
	photos, err := s.photos.ListPublic(ctx, clampList(limit, offset))
	if err != nil {
		s.logger.Error("failed to list public photos", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing public photos: %w", err)
	}
	return photos, nil
}

// ListMine returns the caller's photos, newest first.
func (s *PhotoService) ListMine(ctx context.Context, caller *model.User, limit, offset int) ([]model.Photo, error) {
	photos, err := s.photos.ListByOwner(ctx, caller.ID, clampList(limit, offset))
	if err != nil {
		s.logger.Error("failed to list photos",
			slog.String("userID", caller.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	return photos, nil
}

// Get returns a single photo. Viewable by its owner, by an admin, or by
// any authenticated user when the photo is public; otherwise 403. The
// route sits behind the auth gate, so the caller is never nil. Existence
// is checked first, so a non-owner probing a real private photo sees 403
// rather than 404.
func (s *PhotoService) Get(ctx context.Context, caller *model.User, id string) (*model.Photo, error) {
	photo, err := s.photos.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	if photo.Visibility != model.VisibilityPublic &&
		!auth.IsOwner(photo.OwnerID, caller) && !auth.IsAdmin(caller) {
		return nil, apperror.Forbidden("you do not have permission to view this photo")
	}

	return photo, nil
}

// Update modifies photo metadata. Owner only — not even admins edit
// someone else's titles. Empty title/visibility mean "unchanged". A nil
// description means the field was absent from the request; a pointer to
// the empty string clears the stored description.
func (s *PhotoService) Update(ctx context.Context, caller *model.User, id, title string, description *string, visibility string) (*model.Photo, error) {
	photo, err := s.photos.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	if !auth.IsOwner(photo.OwnerID, caller) {
		return nil, apperror.Forbidden("you do not have permission to update this photo")
	}

	if title = strings.TrimSpace(title); title != "" {
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		photo.Title = title
	}
	if description != nil {
		photo.Description = strings.TrimSpace(*description)
	}
	if visibility != "" {
		if visibility != model.VisibilityPublic && visibility != model.VisibilityPrivate {
			return nil, apperror.ValidationFailed("visibility",
				"visibility must be either public or private")
		}
		photo.Visibility = visibility
	}

	if err := s.photos.Update(ctx, photo); err != nil {
		s.logger.Error("failed to update photo",
			slog.String("photoID", photo.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating photo: %w", err)
	}

	s.logger.Info("photo updated", slog.String("photoID", photo.ID))
	return photo, nil
}

// Delete removes a photo. Allowed for the owner or an admin.
//
// The object-store delete is best-effort: a provider failure is logged
// and swallowed so a flaky store cannot block the metadata delete. An
// orphaned object is cheaper than a photo the owner cannot remove.
func (s *PhotoService) Delete(ctx context.Context, caller *model.User, id string) error {
	photo, err := s.photos.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}

	if !auth.IsOwner(photo.OwnerID, caller) && !auth.IsAdmin(caller) {
		return apperror.Forbidden("you do not have permission to delete this photo")
	}

	if err := s.store.Delete(ctx, photo.ObjectKey); err != nil {
		s.logger.Warn("object store delete failed, removing metadata anyway",
			slog.String("photoID", photo.ID),
			slog.String("objectKey", photo.ObjectKey),
			slog.String("error", err.Error()),
		)
	}

	if err := s.photos.Delete(ctx, photo.ID); err != nil {
		return err
	}

	s.logger.Info("photo deleted",
		slog.String("photoID", photo.ID),
		slog.String("by", caller.ID),
	)
	return nil
}

// DeleteByObjectKey removes a photo addressed by its provider object key
// (the DELETE /upload/{publicId} surface). Same policy as Delete.
func (s *PhotoService) DeleteByObjectKey(ctx context.Context, caller *model.User, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperror.ValidationFailed("publicId", "public ID is required")
	}

	photo, err := s.photos.GetByObjectKey(ctx, key)
	if err != nil {
		return err
	}

	return s.Delete(ctx, caller, photo.ID)
}

// clampList normalizes pagination input to a sane range.
func clampList(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}
