package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/P-cyber162/PhotoVault-API/internal/apperror"
	"github.com/P-cyber162/PhotoVault-API/internal/auth"
	"github.com/P-cyber162/PhotoVault-API/internal/service"
)

// maxUploadMemory bounds the multipart form parse; a full batch of
// maximum-size files plus form fields fits under it.
const maxUploadMemory = (service.MaxBatchFiles + 1) * service.MaxFileSize

// UploadHandler accepts multipart uploads and delegates to UploadService.
type UploadHandler struct {
	uploads *service.UploadService
	photos  *service.PhotoService
}

func NewUploadHandler(uploads *service.UploadService, photos *service.PhotoService) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		photos:  photos,
	}
}

// HandleSingle uploads one photo.
//
// HTTP: POST /api/v1/upload/single
// Form: photo (file), title, description, visibility, albumId
func (h *UploadHandler) HandleSingle(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, apperror.ValidationFailed("photo", "no file uploaded"))
		return
	}
	defer file.Close()

	upload, err := readUpload(file, header)
	if err != nil {
		writeError(w, err)
		return
	}

	photo, err := h.uploads.UploadSingle(r.Context(), caller, *upload,
		r.FormValue("title"),
		r.FormValue("description"),
		r.FormValue("visibility"),
		r.FormValue("albumId"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "photo", photo)
}

// HandleMultiple uploads a batch of photos, all-or-nothing.
//
// HTTP: POST /api/v1/upload/multiple
// Form: photos (files), titles (JSON array), descriptions (JSON array),
// visibility, albumId
func (h *UploadHandler) HandleMultiple(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid multipart form"))
		return
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["photos"]
	}
	if len(headers) == 0 {
		writeError(w, apperror.ValidationFailed("photos", "no files uploaded"))
		return
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			writeError(w, apperror.ValidationFailed("photos", "unreadable file in upload"))
			return
		}
		upload, err := readUpload(f, header)
		f.Close()
		if err != nil {
			writeError(w, err)
			return
		}
		files = append(files, *upload)
	}

	photos, err := h.uploads.UploadBatch(r.Context(), caller, files,
		stringArray(r.FormValue("titles")),
		stringArray(r.FormValue("descriptions")),
		r.FormValue("visibility"),
		r.FormValue("albumId"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	n := len(photos)
	writeJSON(w, http.StatusCreated, envelope{
		Status:  "success",
		Results: &n,
		Data:    map[string]any{"photos": photos},
	})
}

// HandleDeleteByKey removes a photo addressed by its provider object key.
// Keys contain a slash ("photovault/169...-cat.jpg") so the route is a
// wildcard and the key is the full remainder of the path.
//
// HTTP: DELETE /api/v1/upload/*
func (h *UploadHandler) HandleDeleteByKey(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	if err := h.photos.DeleteByObjectKey(r.Context(), caller, chi.URLParam(r, "*")); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Photo deleted successfully")
}

// readUpload buffers one multipart file. Reading is capped one byte past
// the ceiling so an oversized file is detected without buffering all of it.
func readUpload(f multipart.File, header *multipart.FileHeader) (*service.UploadFile, error) {
	data, err := io.ReadAll(io.LimitReader(f, service.MaxFileSize+1))
	if err != nil {
		return nil, apperror.ValidationFailed("photo", "unreadable file in upload")
	}
	if len(data) > service.MaxFileSize {
		return nil, apperror.ValidationFailed("photo", "file exceeds the 10 MiB limit")
	}

	return &service.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// stringArray parses a form field that may hold a JSON array of strings
// ("[\"a\",\"b\"]"). Anything else yields nil and the service applies
// per-file defaults.
func stringArray(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
