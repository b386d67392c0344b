package serve

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ============================================================================
// Response Envelope Tests
// ============================================================================

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"status": "ok"}, http.StatusCreated)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !env.OK {
		t.Error("ok = false, want true")
	}
	if env.Error != nil {
		t.Errorf("error should be nil, got %+v", env.Error)
	}

	dataMap, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data type = %T, want map[string]interface{}", env.Data)
	}
	if dataMap["status"] != "ok" {
		t.Errorf("data.status = %v, want ok", dataMap["status"])
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, ErrNotFound, "no help content has been published", http.StatusNotFound)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.OK {
		t.Error("ok = true, want false")
	}
	if env.Data != nil {
		t.Errorf("data should be nil, got %+v", env.Data)
	}
	if env.Error == nil {
		t.Fatal("error should not be nil")
	}
	if env.Error.Code != ErrNotFound {
		t.Errorf("error.code = %q, want %q", env.Error.Code, ErrNotFound)
	}
}

func TestWriteValidation(t *testing.T) {
	w := httptest.NewRecorder()
	fields := []FieldError{
		{Field: "title", Rule: "required", Message: "title is required"},
		{Field: "sections[1].id", Rule: "unique", Value: "faq", Message: "duplicate section id"},
	}
	WriteValidation(w, fields)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var env struct {
		OK    bool `json:"ok"`
		Error struct {
			Code    string       `json:"code"`
			Details []FieldError `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.OK {
		t.Error("ok = true, want false")
	}
	if env.Error.Code != ErrValidation {
		t.Errorf("error.code = %q, want %q", env.Error.Code, ErrValidation)
	}
	if len(env.Error.Details) != 2 {
		t.Fatalf("len(details) = %d, want 2", len(env.Error.Details))
	}
	if env.Error.Details[1].Field != "sections[1].id" {
		t.Errorf("details[1].field = %q", env.Error.Details[1].Field)
	}
}

func TestEnvelopeJSONShape(t *testing.T) {
	t.Run("success has no error key", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteSuccess(w, "hello", http.StatusOK)

		var raw map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &raw)

		if _, exists := raw["error"]; exists {
			t.Error("success response should not have 'error' key")
		}
		if _, exists := raw["ok"]; !exists {
			t.Error("response should have 'ok' key")
		}
		if _, exists := raw["data"]; !exists {
			t.Error("success response should have 'data' key")
		}
	})

	t.Run("error has no data key", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, ErrInternal, "fail", http.StatusInternalServerError)

		var raw map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &raw)

		if _, exists := raw["data"]; exists {
			t.Error("error response should not have 'data' key")
		}
		if _, exists := raw["error"]; !exists {
			t.Error("error response should have 'error' key")
		}
	})
}
