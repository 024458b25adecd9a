package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/P-cyber162/PhotoVault-API/internal/apperror"
	"github.com/P-cyber162/PhotoVault-API/internal/model"
	"github.com/P-cyber162/PhotoVault-API/internal/repository"
)

// PhotoStore implements repository.PhotoRepository on SQLite.
type PhotoStore struct {
	conn *sql.DB
}

var _ repository.PhotoRepository = (*PhotoStore)(nil)

const photoColumns = `id, title, description, url, object_key, visibility,
	owner_id, album_id, created_at, updated_at`

func scanPhoto(row interface{ Scan(...any) error }) (*model.Photo, error) {
	var p model.Photo
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.URL,
		&p.ObjectKey,
		&p.Visibility,
		&p.OwnerID,
		&p.AlbumID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a photo record. ID and timestamps are assigned here; the
// unique object_key constraint guards against double-persisting one upload.
func (s *PhotoStore) Create(ctx context.Context, photo *model.Photo) error {
	now := time.Now().UTC()
	photo.ID = xid.New().String()
	photo.CreatedAt = now
	photo.UpdatedAt = now
	if photo.Visibility == "" {
		photo.Visibility = model.VisibilityPrivate
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO photos (id, title, description, url, object_key, visibility,
		                     owner_id, album_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		photo.ID,
		photo.Title,
		photo.Description,
		photo.URL,
		photo.ObjectKey,
		photo.Visibility,
		photo.OwnerID,
		photo.AlbumID,
		photo.CreatedAt,
		photo.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("photo", photo.ObjectKey)
		}
		return fmt.Errorf("sqlite: inserting photo %q: %w", photo.Title, err)
	}

	return nil
}

// GetByID retrieves a photo by ID.
func (s *PhotoStore) GetByID(ctx context.Context, id string) (*model.Photo, error) {
	p, err := scanPhoto(s.conn.QueryRowContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("photo", id)
		}
		return nil, fmt.Errorf("sqlite: getting photo %s: %w", id, err)
	}
	return p, nil
}

// GetByObjectKey retrieves a photo by its storage-provider object key.
// Used by DELETE /upload/{publicId}.
func (s *PhotoStore) GetByObjectKey(ctx context.Context, key string) (*model.Photo, error) {
	p, err := scanPhoto(s.conn.QueryRowContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE object_key = ?`, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("photo", key)
		}
		return nil, fmt.Errorf("sqlite: getting photo by key %s: %w", key, err)
	}
	return p, nil
}

// ListPublic returns public photos, newest first. This is the one listing
// that bypasses ownership — public visibility is a public-read capability.
func (s *PhotoStore) ListPublic(ctx context.Context, opts repository.ListOptions) ([]model.Photo, error) {
	return s.list(ctx,
		`WHERE visibility = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		model.VisibilityPublic, opts.Limit, opts.Offset,
	)
}

// ListByOwner returns all photos owned by a user, newest first.
func (s *PhotoStore) ListByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Photo, error) {
	return s.list(ctx,
		`WHERE owner_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		ownerID, opts.Limit, opts.Offset,
	)
}

// ListByAlbum returns an album's members in insertion order, via the
// membership table.
func (s *PhotoStore) ListByAlbum(ctx context.Context, albumID string) ([]model.Photo, error) {
	return s.list(ctx,
		`JOIN album_photos ap ON ap.photo_id = photos.id
		 WHERE ap.album_id = ? ORDER BY ap.position`,
		albumID,
	)
}

func (s *PhotoStore) list(ctx context.Context, clause string, args ...any) ([]model.Photo, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+photoQualifiedColumns+` FROM photos `+clause, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing photos: %w", err)
	}
	defer rows.Close()

	photos := []model.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning photo row: %w", err)
		}
		photos = append(photos, *p)
	}

	return photos, rows.Err()
}

// photoQualifiedColumns disambiguates against joined tables in list queries.
const photoQualifiedColumns = `photos.id, photos.title, photos.description,
	photos.url, photos.object_key, photos.visibility, photos.owner_id,
	photos.album_id, photos.created_at, photos.updated_at`

// Update persists metadata changes (title, description, visibility, album
// back-reference). Owner and object key are immutable after creation.
func (s *PhotoStore) Update(ctx context.Context, photo *model.Photo) error {
	photo.UpdatedAt = time.Now().UTC()

	res, err := s.conn.ExecContext(ctx,
		`UPDATE photos
		 SET title = ?, description = ?, visibility = ?, album_id = ?, updated_at = ?
		 WHERE id = ?`,
		photo.Title,
		photo.Description,
		photo.Visibility,
		photo.AlbumID,
		photo.UpdatedAt,
		photo.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating photo %s: %w", photo.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating photo %s: %w", photo.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("photo", photo.ID)
	}

	return nil
}

// Delete removes a photo record. Album membership rows cascade.
func (s *PhotoStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting photo %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting photo %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("photo", id)
	}

	return nil
}
