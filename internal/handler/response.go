// Package handler contains the HTTP layer: request parsing, response
// writing, and the translation of domain errors into status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/P-cyber162/PhotoVault-API/internal/apperror"
)

// envelope is the uniform response shape:
//
//	success:  {"status":"success", "data":{...}}            (+ "results" for collections, "token" on auth endpoints)
//	failure:  {"status":"fail",    "message":"..."}          (4xx — the client's fault)
//	error:    {"status":"error",   "message":"..."}          (5xx-class — ours or an upstream's)
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already sent; all we can do is log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeSuccess sends {"status":"success","data":{key: value}}.
func writeSuccess(w http.ResponseWriter, status int, key string, value any) {
	writeJSON(w, status, envelope{
		Status: "success",
		Data:   map[string]any{key: value},
	})
}

// writeCollection is writeSuccess plus the "results" count.
func writeCollection(w http.ResponseWriter, key string, n int, value any) {
	writeJSON(w, http.StatusOK, envelope{
		Status:  "success",
		Results: &n,
		Data:    map[string]any{key: value},
	})
}

// writeMessage sends a success envelope with only a message — used by the
// flows that deliberately return no data (forgot-password, reset, logout).
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{
		Status:  "success",
		Message: message,
	})
}

// writeError maps a domain error to the appropriate status code and fail
// envelope. Unclassified errors become a generic 500 — the raw message
// could carry SQL fragments or file paths and must not reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		state := "error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status, state = http.StatusBadRequest, "fail"
		case errors.Is(err, apperror.ErrUnauthorized):
			status, state = http.StatusUnauthorized, "fail"
		case errors.Is(err, apperror.ErrForbidden):
			status, state = http.StatusForbidden, "fail"
		case errors.Is(err, apperror.ErrNotFound):
			status, state = http.StatusNotFound, "fail"
		case errors.Is(err, apperror.ErrConflict):
			status, state = http.StatusConflict, "fail"
		case errors.Is(err, apperror.ErrUpstream):
			status, state = http.StatusBadGateway, "error"
		}

		writeJSON(w, status, envelope{Status: state, Message: appErr.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, envelope{
		Status:  "error",
		Message: "An internal error occurred",
	})
}

// decodeBody decodes a JSON request body into dst, returning a
// client-safe validation error on malformed input.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("", "invalid JSON body")
	}
	return nil
}
