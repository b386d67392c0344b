package serve

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/loanbuddy/helpctl/internal/help"
	"github.com/loanbuddy/helpctl/internal/store"
)

// maxBodyBytes bounds PUT /api/help request bodies.
const maxBodyBytes = 1 << 20

// ============================================================================
// GET /health
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]interface{}{
		"status": "ok",
	}, http.StatusOK)
}

// ============================================================================
// GET /api/help
// ============================================================================

// handleGetHelp writes the help document as bare JSON. The panel decodes
// this shape directly, so it is not wrapped in an Envelope.
func (s *Server) handleGetHelp(w http.ResponseWriter, r *http.Request) {
	doc, err := s.source.Load(r.Context())
	if errors.Is(err, store.ErrEmpty) || (err == nil && doc == nil) {
		WriteError(w, ErrNotFound, "no help content has been published", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load help content", "err", err, "id", RequestID(r.Context()))
		WriteError(w, ErrInternal, "failed to load help content", http.StatusInternalServerError)
		return
	}

	doc.Normalize()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("write help response", "err", err)
	}
}

// ============================================================================
// PUT /api/help
// ============================================================================

// handlePutHelp replaces the stored document.
func (s *Server) handlePutHelp(w http.ResponseWriter, r *http.Request) {
	writer, ok := s.source.(ContentWriter)
	if !ok {
		WriteError(w, ErrReadOnly, "content source is read-only", http.StatusMethodNotAllowed)
		return
	}

	doc, err := help.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, ErrValidation, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if fields := ValidateDocument(doc); len(fields) > 0 {
		WriteValidation(w, fields)
		return
	}

	if err := writer.Replace(r.Context(), doc); err != nil {
		slog.Error("replace help content", "err", err, "id", RequestID(r.Context()))
		WriteError(w, ErrInternal, "failed to store help content", http.StatusInternalServerError)
		return
	}

	slog.Info("help content replaced", "sections", len(doc.Sections), "items", doc.ItemCount())
	WriteSuccess(w, map[string]interface{}{
		"title":    doc.Title,
		"sections": len(doc.Sections),
		"items":    doc.ItemCount(),
	}, http.StatusOK)
}

// ValidateDocument returns field-level errors for a document that cannot
// be stored. Section ids must be present and unique.
func ValidateDocument(doc *help.Response) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(doc.Title) == "" {
		errs = append(errs, FieldError{
			Field:   "title",
			Rule:    "required",
			Message: "title is required",
		})
	}

	seen := make(map[string]bool, len(doc.Sections))
	for i, sec := range doc.Sections {
		field := fmt.Sprintf("sections[%d].id", i)
		if strings.TrimSpace(sec.ID) == "" {
			errs = append(errs, FieldError{
				Field:   field,
				Rule:    "required",
				Message: "section id is required",
			})
			continue
		}
		if seen[sec.ID] {
			errs = append(errs, FieldError{
				Field:   field,
				Rule:    "unique",
				Value:   sec.ID,
				Message: fmt.Sprintf("duplicate section id %q", sec.ID),
			})
		}
		seen[sec.ID] = true
	}

	return errs
}
