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

// AlbumStore implements repository.AlbumRepository on SQLite.
type AlbumStore struct {
	conn *sql.DB
}

var _ repository.AlbumRepository = (*AlbumStore)(nil)

// Create inserts an album. ID and timestamps are assigned here.
func (s *AlbumStore) Create(ctx context.Context, album *model.Album) error {
	now := time.Now().UTC()
	album.ID = xid.New().String()
	album.CreatedAt = now
	album.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO albums (id, name, description, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		album.ID,
		album.Name,
		album.Description,
		album.OwnerID,
		album.CreatedAt,
		album.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting album %q: %w", album.Name, err)
	}

	return nil
}

// GetByID retrieves an album by ID. Membership is loaded separately by the
// service (explicit join, not implicit graph traversal).
func (s *AlbumStore) GetByID(ctx context.Context, id string) (*model.Album, error) {
	var a model.Album

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name, description, owner_id, created_at, updated_at
		 FROM albums WHERE id = ?`, id,
	).Scan(
		&a.ID,
		&a.Name,
		&a.Description,
		&a.OwnerID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("album", id)
		}
		return nil, fmt.Errorf("sqlite: getting album %s: %w", id, err)
	}

	return &a, nil
}

// ListByOwner returns a user's albums, newest first.
func (s *AlbumStore) ListByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Album, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, description, owner_id, created_at, updated_at
		 FROM albums WHERE owner_id = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		ownerID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing albums for %s: %w", ownerID, err)
	}
	defer rows.Close()

	albums := []model.Album{}
	for rows.Next() {
		var a model.Album
		if err := rows.Scan(
			&a.ID,
			&a.Name,
			&a.Description,
			&a.OwnerID,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning album row: %w", err)
		}
		albums = append(albums, a)
	}

	return albums, rows.Err()
}

// Update persists name/description changes.
func (s *AlbumStore) Update(ctx context.Context, album *model.Album) error {
	album.UpdatedAt = time.Now().UTC()

	res, err := s.conn.ExecContext(ctx,
		`UPDATE albums SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		album.Name,
		album.Description,
		album.UpdatedAt,
		album.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating album %s: %w", album.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating album %s: %w", album.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("album", album.ID)
	}

	return nil
}

// Delete removes an album. Membership rows cascade; photos keep existing
// with album_id set NULL by the schema.
func (s *AlbumStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting album %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting album %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("album", id)
	}

	return nil
}

// AddPhoto records album membership and sets the photo's back-reference,
// in one transaction.
//
// INSERT OR IGNORE against the composite primary key makes the membership
// insert idempotent — concurrent or repeated adds of the same pair leave
// exactly one row. The photo's album_id is set unconditionally either way:
// establishing membership is "set the photo's album and ensure list
// membership", not a pure append.
func (s *AlbumStore) AddPhoto(ctx context.Context, albumID, photoID string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning add-photo tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO album_photos (album_id, photo_id, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM album_photos WHERE album_id = ?))`,
		albumID, photoID, albumID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding photo %s to album %s: %w", photoID, albumID, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE photos SET album_id = ?, updated_at = ? WHERE id = ?`,
		albumID, time.Now().UTC(), photoID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting album reference on photo %s: %w", photoID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing add-photo tx: %w", err)
	}

	return nil
}
