package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/P-cyber162/PhotoVault-API/internal/apperror"
	"github.com/P-cyber162/PhotoVault-API/internal/model"
	"github.com/P-cyber162/PhotoVault-API/internal/repository"
	"github.com/P-cyber162/PhotoVault-API/internal/storage"
)

// In-memory fakes for the repository interfaces. They mirror the sqlite
// stores' contract — copies in, copies out, apperror sentinels on misses —
// so the services under test cannot tell the difference.

// ---------------------------------------------------------------------
// users
// ---------------------------------------------------------------------

type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int

	failList bool // simulate a storage failure on List
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("user", "username or email already taken")
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

// GetByResetTokenHash matches the sqlite store: expired tokens do not match.
func (f *fakeUserRepo) GetByResetTokenHash(_ context.Context, tokenHash string) (*model.User, error) {
	for _, u := range f.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(time.Now()) {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", "reset token")
}

func (f *fakeUserRepo) List(_ context.Context, opts repository.ListOptions) ([]model.User, error) {
	if f.failList {
		return nil, fmt.Errorf("storage is down")
	}
	result := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		result = append(result, *u)
	}
	return paginate(result, opts), nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	user.UpdatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	return nil
}

// ---------------------------------------------------------------------
// photos
// ---------------------------------------------------------------------

type fakePhotoRepo struct {
	photos map[string]*model.Photo
	nextID int

	// album membership in insertion order, shared with fakeAlbumRepo
	members map[string][]string
}

func newFakePhotoRepo() *fakePhotoRepo {
	return &fakePhotoRepo{
		photos:  make(map[string]*model.Photo),
		members: make(map[string][]string),
	}
}

func (f *fakePhotoRepo) Create(_ context.Context, photo *model.Photo) error {
	f.nextID++
	photo.ID = fmt.Sprintf("photo-%d", f.nextID)
	photo.CreatedAt = time.Now()
	photo.UpdatedAt = photo.CreatedAt
	stored := *photo
	f.photos[photo.ID] = &stored
	return nil
}

func (f *fakePhotoRepo) GetByID(_ context.Context, id string) (*model.Photo, error) {
	p, ok := f.photos[id]
	if !ok {
		return nil, apperror.NotFound("photo", id)
	}
	result := *p
	return &result, nil
}

func (f *fakePhotoRepo) GetByObjectKey(_ context.Context, key string) (*model.Photo, error) {
	for _, p := range f.photos {
		if p.ObjectKey == key {
			result := *p
			return &result, nil
		}
	}
	return nil, apperror.NotFound("photo", key)
}

func (f *fakePhotoRepo) ListPublic(_ context.Context, opts repository.ListOptions) ([]model.Photo, error) {
	result := []model.Photo{}
	for _, p := range f.photos {
		if p.Visibility == model.VisibilityPublic {
			result = append(result, *p)
		}
	}
	return paginate(result, opts), nil
}

func (f *fakePhotoRepo) ListByOwner(_ context.Context, ownerID string, opts repository.ListOptions) ([]model.Photo, error) {
	result := []model.Photo{}
	for _, p := range f.photos {
		if p.OwnerID == ownerID {
			result = append(result, *p)
		}
	}
	return paginate(result, opts), nil
}

func (f *fakePhotoRepo) ListByAlbum(_ context.Context, albumID string) ([]model.Photo, error) {
	result := []model.Photo{}
	for _, photoID := range f.members[albumID] {
		if p, ok := f.photos[photoID]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakePhotoRepo) Update(_ context.Context, photo *model.Photo) error {
	if _, ok := f.photos[photo.ID]; !ok {
		return apperror.NotFound("photo", photo.ID)
	}
	photo.UpdatedAt = time.Now()
	stored := *photo
	f.photos[photo.ID] = &stored
	return nil
}

func (f *fakePhotoRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.photos[id]; !ok {
		return apperror.NotFound("photo", id)
	}
	delete(f.photos, id)
	return nil
}

// ---------------------------------------------------------------------
// albums
// ---------------------------------------------------------------------

type fakeAlbumRepo struct {
	albums map[string]*model.Album
	nextID int

	// photos holds the membership table; sharing it lets ListByAlbum see
	// what AddPhoto wrote, same as the real schema.
	photos *fakePhotoRepo
}

func newFakeAlbumRepo(photos *fakePhotoRepo) *fakeAlbumRepo {
	return &fakeAlbumRepo{
		albums: make(map[string]*model.Album),
		photos: photos,
	}
}

func (f *fakeAlbumRepo) Create(_ context.Context, album *model.Album) error {
	f.nextID++
	album.ID = fmt.Sprintf("album-%d", f.nextID)
	album.CreatedAt = time.Now()
	album.UpdatedAt = album.CreatedAt
	stored := *album
	f.albums[album.ID] = &stored
	return nil
}

func (f *fakeAlbumRepo) GetByID(_ context.Context, id string) (*model.Album, error) {
	a, ok := f.albums[id]
	if !ok {
		return nil, apperror.NotFound("album", id)
	}
	result := *a
	return &result, nil
}

func (f *fakeAlbumRepo) ListByOwner(_ context.Context, ownerID string, opts repository.ListOptions) ([]model.Album, error) {
	result := []model.Album{}
	for _, a := range f.albums {
		if a.OwnerID == ownerID {
			result = append(result, *a)
		}
	}
	return paginate(result, opts), nil
}

func (f *fakeAlbumRepo) Update(_ context.Context, album *model.Album) error {
	if _, ok := f.albums[album.ID]; !ok {
		return apperror.NotFound("album", album.ID)
	}
	stored := *album
	f.albums[album.ID] = &stored
	return nil
}

func (f *fakeAlbumRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.albums[id]; !ok {
		return apperror.NotFound("album", id)
	}
	delete(f.albums, id)
	delete(f.photos.members, id)
	return nil
}

// AddPhoto mirrors the sqlite store: membership inserts are idempotent,
// the photo's album back-reference is set unconditionally.
func (f *fakeAlbumRepo) AddPhoto(_ context.Context, albumID, photoID string) error {
	if _, ok := f.albums[albumID]; !ok {
		return apperror.NotFound("album", albumID)
	}
	photo, ok := f.photos.photos[photoID]
	if !ok {
		return apperror.NotFound("photo", photoID)
	}

	present := false
	for _, id := range f.photos.members[albumID] {
		if id == photoID {
			present = true
			break
		}
	}
	if !present {
		f.photos.members[albumID] = append(f.photos.members[albumID], photoID)
	}

	photo.AlbumID = &albumID
	return nil
}

// ---------------------------------------------------------------------
// object store
// ---------------------------------------------------------------------

// fakeObjectStore records puts and deletes. Batch uploads call Put
// concurrently, hence the mutex. Keys containing failSubstring fail,
// which is how tests trigger partial-batch cleanup.
type fakeObjectStore struct {
	mu            sync.Mutex
	objects       map[string][]byte
	deleted       []string
	failSubstring string
	failDelete    bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(_ context.Context, key, _ string, data []byte) (*storage.StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSubstring != "" && strings.Contains(key, f.failSubstring) {
		return nil, fmt.Errorf("provider rejected %s", key)
	}
	f.objects[key] = data
	return &storage.StoredObject{
		Key: key,
		URL: "https://cdn.test/" + key,
	}, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return fmt.Errorf("provider refused delete of %s", key)
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

// ---------------------------------------------------------------------
// mailer
// ---------------------------------------------------------------------

type fakeMailer struct {
	sentTo  []string
	urls    []string
	failAll bool
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	if f.failAll {
		return fmt.Errorf("smtp relay unreachable")
	}
	f.sentTo = append(f.sentTo, to)
	f.urls = append(f.urls, resetURL)
	return nil
}

// ---------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------

func paginate[T any](items []T, opts repository.ListOptions) []T {
	if opts.Offset >= len(items) {
		return []T{}
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string { return &s }

func testUser(id string) *model.User {
	return &model.User{ID: id, Username: "user-" + id, Email: id + "@example.com", Role: model.RoleUser}
}

func testAdmin(id string) *model.User {
	return &model.User{ID: id, Username: "admin-" + id, Email: id + "@example.com", Role: model.RoleAdmin}
}

func mustCreatePhoto(t *testing.T, repo *fakePhotoRepo, ownerID, visibility string) *model.Photo {
	t.Helper()
	key := fmt.Sprintf("photovault/%d-test.jpg", repo.nextID+1)
	photo := &model.Photo{
		Title:      "test photo",
		URL:        "https://cdn.test/" + key,
		ObjectKey:  key,
		Visibility: visibility,
		OwnerID:    ownerID,
	}
	if err := repo.Create(context.Background(), photo); err != nil {
		t.Fatalf("setup: creating photo: %v", err)
	}
	return photo
}
