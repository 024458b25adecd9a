package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/P-cyber162/PhotoVault-API/internal/apperror"
	"github.com/P-cyber162/PhotoVault-API/internal/auth"
	"github.com/P-cyber162/PhotoVault-API/internal/model"
	"github.com/P-cyber162/PhotoVault-API/internal/repository"
	"github.com/P-cyber162/PhotoVault-API/internal/storage"
)

const (
	// MaxFileSize is the per-file upload ceiling.
	MaxFileSize = 10 << 20 // 10 MiB

	// MaxBatchFiles caps a multi-file upload.
	MaxBatchFiles = 10

	// keyPrefix namespaces every stored object.
	keyPrefix = "photovault"
)

// UploadFile is one in-memory file from a multipart request.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadService validates incoming files, writes them to the object store,
// and persists the resulting photo records.
//
// Ordering invariant: a photo row is only written after the store confirms
// the object write, so metadata never points at missing bytes. The
// converse (an object surviving a crash between store write and persist)
// is accepted.
type UploadService struct {
	photos repository.PhotoRepository
	albums repository.AlbumRepository
	store  storage.ObjectStore
	logger *slog.Logger
}

func NewUploadService(
	photos repository.PhotoRepository,
	albums repository.AlbumRepository,
	store storage.ObjectStore,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		photos: photos,
		albums: albums,
		store:  store,
		logger: logger,
	}
}

// UploadSingle stores one file and creates its photo record.
func (s *UploadService) UploadSingle(
	ctx context.Context,
	caller *model.User,
	file UploadFile,
	title, description, visibility, albumID string,
) (*model.Photo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "photo title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if err := validateFile(file); err != nil {
		return nil, err
	}
	visibility, err := normalizeVisibility(visibility)
	if err != nil {
		return nil, err
	}
	albumRef, err := s.albumRef(ctx, caller, albumID)
	if err != nil {
		return nil, err
	}

	obj, err := s.store.Put(ctx, StorageKey(file.Name), file.ContentType, file.Data)
	if err != nil {
		s.logger.Error("object store write failed",
			slog.String("file", file.Name),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream("failed to store the uploaded file")
	}

	photo := &model.Photo{
		Title:       title,
		Description: strings.TrimSpace(description),
		URL:         obj.URL,
		ObjectKey:   obj.Key,
		Visibility:  visibility,
		OwnerID:     caller.ID,
		AlbumID:     albumRef,
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		return nil, err
	}

	s.logger.Info("photo uploaded",
		slog.String("photoID", photo.ID),
		slog.String("objectKey", photo.ObjectKey),
		slog.Int("bytes", len(file.Data)),
	)

	return photo, nil
}

// UploadBatch stores several files concurrently, all-or-nothing.
//
// Every file is validated up front; then the store writes fan out in
// parallel and the method waits for all of them. If any write fails, the
// objects that did make it are deleted best-effort and no database rows
// are written. Rows are only inserted after the whole batch of bytes is
// durable.
func (s *UploadService) UploadBatch(
	ctx context.Context,
	caller *model.User,
	files []UploadFile,
	titles, descriptions []string,
	visibility, albumID string,
) ([]model.Photo, error) {
	if len(files) == 0 {
		return nil, apperror.ValidationFailed("photos", "no files uploaded")
	}
	if len(files) > MaxBatchFiles {
		return nil, apperror.ValidationFailed("photos",
			fmt.Sprintf("at most %d files per upload", MaxBatchFiles))
	}
	for _, f := range files {
		if err := validateFile(f); err != nil {
			return nil, err
		}
	}
	visibility, err := normalizeVisibility(visibility)
	if err != nil {
		return nil, err
	}
	albumRef, err := s.albumRef(ctx, caller, albumID)
	if err != nil {
		return nil, err
	}

	// Each goroutine writes only its own slot, so no lock is needed.
	stored := make([]*storage.StoredObject, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			obj, err := s.store.Put(gctx, StorageKey(f.Name), f.ContentType, f.Data)
			if err != nil {
				return fmt.Errorf("storing %s: %w", f.Name, err)
			}
			stored[i] = obj
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// All-or-nothing: remove whatever was already written so a
		// partial batch leaves no objects behind. Best-effort only.
		for _, obj := range stored {
			if obj == nil {
				continue
			}
			if derr := s.store.Delete(ctx, obj.Key); derr != nil {
				s.logger.Warn("batch cleanup delete failed",
					slog.String("objectKey", obj.Key),
					slog.String("error", derr.Error()),
				)
			}
		}
		s.logger.Error("batch upload failed", slog.String("error", err.Error()))
		return nil, apperror.Upstream("failed to store one or more uploaded files")
	}

	photos := make([]model.Photo, 0, len(files))
	for i, obj := range stored {
		title := fmt.Sprintf("Photo %d", i+1)
		if i < len(titles) && strings.TrimSpace(titles[i]) != "" {
			title = strings.TrimSpace(titles[i])
		}
		description := ""
		if i < len(descriptions) {
			description = strings.TrimSpace(descriptions[i])
		}

		photo := &model.Photo{
			Title:       title,
			Description: description,
			URL:         obj.URL,
			ObjectKey:   obj.Key,
			Visibility:  visibility,
			OwnerID:     caller.ID,
			AlbumID:     albumRef,
		}
		if err := s.photos.Create(ctx, photo); err != nil {
			return nil, err
		}
		photos = append(photos, *photo)
	}

	s.logger.Info("batch upload completed",
		slog.String("userID", caller.ID),
		slog.Int("files", len(photos)),
	)

	return photos, nil
}

// validateFile enforces the content-type and size ceiling before any
// bytes leave the process.
func validateFile(f UploadFile) error {
	if len(f.Data) == 0 {
		return apperror.ValidationFailed("photo", "no file uploaded")
	}
	if !strings.HasPrefix(f.ContentType, "image/") {
		return apperror.ValidationFailed("photo", "only image files are allowed")
	}
	if len(f.Data) > MaxFileSize {
		return apperror.ValidationFailed("photo", "file exceeds the 10 MiB limit")
	}
	return nil
}

func normalizeVisibility(v string) (string, error) {
	switch v {
	case "":
		return model.VisibilityPrivate, nil
	case model.VisibilityPublic, model.VisibilityPrivate:
		return v, nil
	default:
		return "", apperror.ValidationFailed("visibility",
			"visibility must be either public or private")
	}
}

// albumRef validates an optional target album and returns it as a
// nullable reference. The caller must own the album they upload into.
func (s *UploadService) albumRef(ctx context.Context, caller *model.User, albumID string) (*string, error) {
	albumID = strings.TrimSpace(albumID)
	if albumID == "" {
		return nil, nil
	}

	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if !auth.IsOwner(album.OwnerID, caller) {
		return nil, apperror.Forbidden("you do not have permission to add to this album")
	}
	return &album.ID, nil
}

var keySanitizer = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
var whitespace = regexp.MustCompile(`\s+`)

// StorageKey derives a collision-resistant object key from the original
// filename: millisecond timestamp plus the name with whitespace collapsed
// to '-' and everything outside [a-zA-Z0-9.-] stripped.
func StorageKey(filename string) string {
	sanitized := whitespace.ReplaceAllString(filename, "-")
	sanitized = keySanitizer.ReplaceAllString(sanitized, "")
	return fmt.Sprintf("%s/%d-%s", keyPrefix, time.Now().UnixMilli(), sanitized)
}
