// Package serve implements helpctl serve, the HTTP service that publishes
// the help document, including response envelopes and port file handling.
package serve

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ============================================================================
// Response Envelope
// ============================================================================

// Envelope is the response wrapper for every endpoint except GET /api/help.
// Success: {"ok": true, "data": {...}}
// Error:   {"ok": false, "error": {"code": "...", "message": "...", "details": ...}}
type Envelope struct {
	OK    bool          `json:"ok"`
	Data  interface{}   `json:"data,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload holds structured error information.
type ErrorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// FieldError describes a single validation failure on a request field.
type FieldError struct {
	Field    string      `json:"field"`
	Rule     string      `json:"rule"`
	Value    interface{} `json:"value,omitempty"`
	Expected interface{} `json:"expected,omitempty"`
	Message  string      `json:"message"`
}

// Standard error codes mapped to HTTP status codes.
const (
	ErrValidation   = "validation_error" // 400
	ErrUnauthorized = "unauthorized"     // 401
	ErrForbidden    = "forbidden"        // 403
	ErrNotFound     = "not_found"        // 404
	ErrReadOnly     = "read_only"        // 405
	ErrInternal     = "internal"         // 500
)

// WriteSuccess writes a JSON success envelope with the given data and status.
func WriteSuccess(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{OK: true, Data: data}); err != nil {
		slog.Error("write success response", "err", err)
	}
}

// WriteError writes a JSON error envelope.
func WriteError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{
		OK: false,
		Error: &ErrorPayload{
			Code:    code,
			Message: message,
		},
	}); err != nil {
		slog.Error("write error response", "err", err)
	}
}

// WriteValidation writes a 400 validation_error response with field-level details.
func WriteValidation(w http.ResponseWriter, fields []FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(Envelope{
		OK: false,
		Error: &ErrorPayload{
			Code:    ErrValidation,
			Message: "Validation failed",
			Details: fields,
		},
	}); err != nil {
		slog.Error("write validation response", "err", err)
	}
}
