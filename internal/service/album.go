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

const MaxAlbumNameLength = 100

// AlbumService handles the album lifecycle. Albums are strictly
// owner-scoped: every read and mutation requires ownership.
type AlbumService struct {
	albums repository.AlbumRepository
	photos repository.PhotoRepository
	logger *slog.Logger
}

func NewAlbumService(albums repository.AlbumRepository, photos repository.PhotoRepository, logger *slog.Logger) *AlbumService {
	return &AlbumService{
		albums: albums,
		photos: photos,
		logger: logger,
	}
}

// Create makes a new album owned by the caller.
func (s *AlbumService) Create(ctx context.Context, caller *model.User, name, description string) (*model.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "album name is required")
	}
	if len(name) > MaxAlbumNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("album name must be %d characters or less", MaxAlbumNameLength))
	}

	album := &model.Album{
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     caller.ID,
	}

	if err := s.albums.Create(ctx, album); err != nil {
		s.logger.Error("failed to create album",
			slog.String("userID", caller.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating album: %w", err)
	}

	s.logger.Info("album created",
		slog.String("albumID", album.ID),
		slog.String("ownerID", caller.ID),
	)
	return album, nil
}

// ListMine returns the caller's albums, each with its member photos
// loaded by a second, explicit query per album.
func (s *AlbumService) ListMine(ctx context.Context, caller *model.User, limit, offset int) ([]model.Album, error) {
	albums, err := s.albums.ListByOwner(ctx, caller.ID, clampList(limit, offset))
	if err != nil {
		s.logger.Error("failed to list albums",
			slog.String("userID", caller.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing albums: %w", err)
	}

	for i := range albums {
		photos, err := s.photos.ListByAlbum(ctx, albums[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading photos for album %s: %w", albums[i].ID, err)
		}
		albums[i].Photos = photos
	}

	return albums, nil
}

// Get returns a single album with its photos. Owner only.
func (s *AlbumService) Get(ctx context.Context, caller *model.User, id string) (*model.Album, error) {
	album, err := s.ownedAlbum(ctx, caller, id, "view")
	if err != nil {
		return nil, err
	}

	photos, err := s.photos.ListByAlbum(ctx, album.ID)
	if err != nil {
		return nil, fmt.Errorf("loading photos for album %s: %w", album.ID, err)
	}
	album.Photos = photos

	return album, nil
}

// Update renames or re-describes an album. Owner only. Empty name means
// "unchanged". A nil description means the field was absent from the
// request; a pointer to the empty string clears it.
func (s *AlbumService) Update(ctx context.Context, caller *model.User, id, name string, description *string) (*model.Album, error) {
	album, err := s.ownedAlbum(ctx, caller, id, "update")
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		if len(name) > MaxAlbumNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("album name must be %d characters or less", MaxAlbumNameLength))
		}
		album.Name = name
	}
	if description != nil {
		album.Description = strings.TrimSpace(*description)
	}

	if err := s.albums.Update(ctx, album); err != nil {
		s.logger.Error("failed to update album",
			slog.String("albumID", album.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating album: %w", err)
	}

	s.logger.Info("album updated", slog.String("albumID", album.ID))
	return album, nil
}

// Delete removes an album. Owner only. Member photos survive with their
// album reference cleared at the schema level.
func (s *AlbumService) Delete(ctx context.Context, caller *model.User, id string) error {
	album, err := s.ownedAlbum(ctx, caller, id, "delete")
	if err != nil {
		return err
	}

	if err := s.albums.Delete(ctx, album.ID); err != nil {
		return err
	}

	s.logger.Info("album deleted", slog.String("albumID", album.ID))
	return nil
}

// AddPhoto puts a photo into an album. The caller must own both.
//
// Membership is idempotent: a repeated add of the same pair leaves exactly
// one entry, while the photo's album back-reference is set unconditionally
// either way. Returns the album with its refreshed photo list.
func (s *AlbumService) AddPhoto(ctx context.Context, caller *model.User, albumID, photoID string) (*model.Album, error) {
	photoID = strings.TrimSpace(photoID)
	if photoID == "" {
		return nil, apperror.ValidationFailed("photoId", "photo ID is required")
	}

	album, err := s.albums.GetByID(ctx, strings.TrimSpace(albumID))
	if err != nil {
		return nil, err
	}
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}

	if !auth.IsOwner(album.OwnerID, caller) || !auth.IsOwner(photo.OwnerID, caller) {
		return nil, apperror.Forbidden("you do not have permission")
	}

	if err := s.albums.AddPhoto(ctx, album.ID, photo.ID); err != nil {
		s.logger.Error("failed to add photo to album",
			slog.String("albumID", album.ID),
			slog.String("photoID", photo.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding photo to album: %w", err)
	}

	s.logger.Info("photo added to album",
		slog.String("albumID", album.ID),
		slog.String("photoID", photo.ID),
	)

	photos, err := s.photos.ListByAlbum(ctx, album.ID)
	if err != nil {
		return nil, fmt.Errorf("loading photos for album %s: %w", album.ID, err)
	}
	album.Photos = photos

	return album, nil
}

// ownedAlbum loads an album and enforces the owner-only policy shared by
// every album operation.
func (s *AlbumService) ownedAlbum(ctx context.Context, caller *model.User, id, verb string) (*model.Album, error) {
	album, err := s.albums.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if !auth.IsOwner(album.OwnerID, caller) {
		return nil, apperror.Forbidden("you do not have permission to " + verb + " this album")
	}
	return album, nil
}
