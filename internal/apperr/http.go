package apperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// ErrorResponse is the envelope returned for every failed request.
type ErrorResponse struct {
	Timestamp   time.Time    `json:"timestamp"`
	Status      int          `json:"status"`
	Error       string       `json:"error"`
	Message     string       `json:"message"`
	Path        string       `json:"path"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}

// FieldError points at a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StatusOf maps an error from the taxonomy onto an HTTP status code.
// Unclassified errors map to 500.
func StatusOf(err error) int {
	var invalid *ValidationError
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsBadRequest(err), IsInsufficientStock(err), IsInvalidOrderState(err), errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Write renders err as the standard error envelope.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		message = "An unexpected error occurred"
	}

	resp := ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	}

	var invalid *ValidationError
	if errors.As(err, &invalid) {
		resp.FieldErrors = invalid.Fields
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// ValidationError aggregates per-field request validation failures.
type ValidationError struct {
	Fields []FieldError
}

func Validation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
