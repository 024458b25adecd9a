package model

import "time"

// Photo visibility values. Private photos are visible only to their owner
// (and admins); public photos appear in the unauthenticated public feed.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Photo is an owned media record. The bytes live in the object store; this
// row holds the durable URL plus the provider object key (ObjectKey) needed
// to delete them later. ObjectKey is unique — one stored object maps to
// exactly one metadata row.
//
// AlbumID is a nullable back-reference kept in sync by the album service's
// add operation.
type Photo struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	URL         string    `json:"url"         db:"url"`
	ObjectKey   string    `json:"publicId"    db:"object_key"`
	Visibility  string    `json:"visibility"  db:"visibility"`
	OwnerID     string    `json:"ownerId"     db:"owner_id"`
	AlbumID     *string   `json:"albumId,omitempty" db:"album_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
