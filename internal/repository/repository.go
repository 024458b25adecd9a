// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/P-cyber162/PhotoVault-API/internal/model"
)

// ListOptions carries pagination parameters for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository persists user accounts.
//
// Create must enforce username/email uniqueness (returning
// apperror.ErrConflict on violation). GetByEmail is used by login and the
// reset flow; GetByResetTokenHash only matches rows whose token has not
// expired, which keeps the single-use/expiry invariant in one place.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

// PhotoRepository persists photo metadata.
type PhotoRepository interface {
	Create(ctx context.Context, photo *model.Photo) error
	GetByID(ctx context.Context, id string) (*model.Photo, error)
	GetByObjectKey(ctx context.Context, key string) (*model.Photo, error)
	ListPublic(ctx context.Context, opts ListOptions) ([]model.Photo, error)
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]model.Photo, error)
	ListByAlbum(ctx context.Context, albumID string) ([]model.Photo, error)
	Update(ctx context.Context, photo *model.Photo) error
	Delete(ctx context.Context, id string) error
}

// AlbumRepository persists albums and their photo membership.
//
// AddPhoto must be idempotent: a second add of the same (album, photo)
// pair leaves exactly one membership entry, while the photo's album
// back-reference is set unconditionally either way.
type AlbumRepository interface {
	Create(ctx context.Context, album *model.Album) error
	GetByID(ctx context.Context, id string) (*model.Album, error)
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]model.Album, error)
	Update(ctx context.Context, album *model.Album) error
	Delete(ctx context.Context, id string) error
	AddPhoto(ctx context.Context, albumID, photoID string) error
}
