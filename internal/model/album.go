package model

import "time"

// Album is a named, owner-scoped collection of photos.
//
// Photos is populated by an explicit service-level join (load the album,
// then load its members) — it is not stored on the album row itself.
// Membership order is insertion order and duplicates are impossible at the
// storage layer (composite primary key on the membership table).
type Album struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	OwnerID     string    `json:"ownerId"     db:"owner_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	Photos []Photo `json:"photos,omitempty" db:"-"`
}
