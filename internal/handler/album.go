package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/P-cyber162/PhotoVault-API/internal/auth"
	"github.com/P-cyber162/PhotoVault-API/internal/service"
)

// AlbumHandler exposes album CRUD and the add-photo operation. Every
// route is behind RequireAuth; ownership is enforced in the service.
type AlbumHandler struct {
	albums *service.AlbumService
}

func NewAlbumHandler(albums *service.AlbumService) *AlbumHandler {
	return &AlbumHandler{albums: albums}
}

// HandleCreate makes a new album.
//
// HTTP: POST /api/v1/albums
// Body: {"name","description"}
func (h *AlbumHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	album, err := h.albums.Create(r.Context(), caller, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "album", album)
}

// HandleListMine returns the caller's albums with their photos.
//
// HTTP: GET /api/v1/albums
func (h *AlbumHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())
	limit, offset := pagination(r)

	albums, err := h.albums.ListMine(r.Context(), caller, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCollection(w, "albums", len(albums), albums)
}

// HandleGet returns one album with its photos (owner only).
//
// HTTP: GET /api/v1/albums/{id}
func (h *AlbumHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	album, err := h.albums.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "album", album)
}

// HandleUpdate renames/re-describes an album (owner only). Description is
// a pointer so an omitted field leaves the stored value alone while an
// explicit "" clears it.
//
// HTTP: PATCH /api/v1/albums/{id}
func (h *AlbumHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	album, err := h.albums.Update(r.Context(), caller, chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "album", album)
}

// HandleDelete removes an album (owner only).
//
// HTTP: DELETE /api/v1/albums/{id}
func (h *AlbumHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	if err := h.albums.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAddPhoto adds a photo to an album; the caller must own both.
//
// HTTP: POST /api/v1/albums/{id}/photos
// Body: {"photoId"}
func (h *AlbumHandler) HandleAddPhoto(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	var req struct {
		PhotoID string `json:"photoId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	album, err := h.albums.AddPhoto(r.Context(), caller, chi.URLParam(r, "id"), req.PhotoID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "album", album)
}
