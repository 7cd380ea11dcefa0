package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/seedtools/shopseed/internal/logging"
	"github.com/seedtools/shopseed/internal/seed"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, seed.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, seed.ErrRunInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error server-side and writes a JSON error
// body to the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
	)

	respondJSON(w, statusCode, ErrorResponse{Error: err.Error()})
}

// respondJSON writes v as a JSON response body.
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
