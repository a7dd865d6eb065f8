package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"social-backend/internal/apperrors"

	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 12 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondAppError maps a service error to its status code. Internal causes
// are logged and never sent to the client.
func respondAppError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	appErr := apperrors.From(err)
	if appErr.Kind == apperrors.KindInternal {
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(msg)
	}
	respondError(w, appErr.Message, appErr.Kind.StatusCode())
}

// respondJSON sends v as a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON object from the request body into v.
// Unknown fields and trailing data are rejected. An empty body leaves v
// zeroed.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return true
	}
	if err == nil {
		err = dec.Decode(&struct{}{})
		if errors.Is(err, io.EOF) {
			return true
		}
	}

	respondError(w, "Invalid request body", http.StatusBadRequest)
	return false
}
