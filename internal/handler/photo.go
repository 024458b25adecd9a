package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/P-cyber162/PhotoVault-API/internal/auth"
	"github.com/P-cyber162/PhotoVault-API/internal/service"
)

// PhotoHandler exposes the photo read/update/delete surface. Uploads
// (creation) live in UploadHandler.
type PhotoHandler struct {
	photos *service.PhotoService
}

func NewPhotoHandler(photos *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

// HandleListPublic returns the public feed.
//
// HTTP: GET /api/v1/photos/public (no auth)
func (h *PhotoHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	photos, err := h.photos.ListPublic(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCollection(w, "photos", len(photos), photos)
}

// HandleListMine returns the caller's photos.
//
// HTTP: GET /api/v1/photos/my-photos
func (h *PhotoHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())
	limit, offset := pagination(r)

	photos, err := h.photos.ListMine(r.Context(), caller, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCollection(w, "photos", len(photos), photos)
}

// HandleGet returns one photo, subject to the visibility policy.
//
// HTTP: GET /api/v1/photos/{id}
func (h *PhotoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	photo, err := h.photos.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "photo", photo)
}

// HandleUpdate modifies photo metadata.
//
// HTTP: PATCH /api/v1/photos/{id}
// Body: {"title","description","visibility"} — all optional. Description
// is a pointer so an omitted field and an explicit "" stay distinct: only
// the latter clears the stored description.
func (h *PhotoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Visibility  string  `json:"visibility"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	photo, err := h.photos.Update(r.Context(), caller,
		chi.URLParam(r, "id"), req.Title, req.Description, req.Visibility)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "photo", photo)
}

// HandleDelete removes a photo (owner or admin).
//
// HTTP: DELETE /api/v1/photos/{id}
func (h *PhotoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	if err := h.photos.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pagination reads optional ?limit= and ?offset= query parameters.
// Out-of-range values are clamped in the service layer.
func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
