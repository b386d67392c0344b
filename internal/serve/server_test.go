package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/loanbuddy/helpctl/internal/help"
	"github.com/loanbuddy/helpctl/internal/helpclient"
	"github.com/loanbuddy/helpctl/internal/store"
)

// memSource is a writable in-memory ContentSource.
type memSource struct {
	mu  sync.Mutex
	doc *help.Response
	err error
}

func (m *memSource) Load(context.Context) (*help.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.doc == nil {
		return nil, store.ErrEmpty
	}
	return m.doc.Clone(), nil
}

func (m *memSource) Replace(_ context.Context, doc *help.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = doc.Clone()
	return nil
}

func newTestServer(config ServeConfig) *Server {
	return NewServer(StaticSource{Doc: help.Default()}, config)
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v\n%s", err, w.Body.String())
	}
	return env
}

// ============================================================================
// GET /api/help
// ============================================================================

func TestGetHelp_BareDocument(t *testing.T) {
	w := do(t, newTestServer(ServeConfig{}).Handler(), "GET", "/api/help", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, wrapped := raw["ok"]; wrapped {
		t.Error("GET /api/help must not be wrapped in an envelope")
	}

	var doc help.Response
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	if doc.Title != help.Default().Title || len(doc.Sections) != 6 {
		t.Errorf("unexpected document %q with %d sections", doc.Title, len(doc.Sections))
	}
}

func TestGetHelp_NullCollectionsSerializeEmpty(t *testing.T) {
	src := &memSource{doc: &help.Response{
		Title:    "Sparse",
		Sections: []help.Section{{ID: "a", Title: "A"}},
	}}
	w := do(t, NewServer(src, ServeConfig{}).Handler(), "GET", "/api/help", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "null") {
		t.Errorf("collections should serialize as [], got %s", body)
	}
	if !strings.Contains(body, `"items":[]`) {
		t.Errorf("missing empty items array: %s", body)
	}
}

func TestGetHelp_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   ContentSource
		wantCode int
		wantErr  string
	}{
		{"empty store", &memSource{}, http.StatusNotFound, ErrNotFound},
		{"nil static document", StaticSource{}, http.StatusNotFound, ErrNotFound},
		{"load failure", &memSource{err: errors.New("disk on fire")}, http.StatusInternalServerError, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, NewServer(tt.source, ServeConfig{}).Handler(), "GET", "/api/help", "", nil)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			env := decodeEnvelope(t, w)
			if env.OK || env.Error == nil || env.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantErr)
			}
			if strings.Contains(w.Body.String(), "disk on fire") {
				t.Error("internal error detail leaked to the client")
			}
		})
	}
}

func TestGetHelp_ConsumedByClient(t *testing.T) {
	ts := httptest.NewServer(newTestServer(ServeConfig{}).Handler())
	defer ts.Close()

	doc, err := helpclient.New(ts.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.ItemCount() != help.Default().ItemCount() {
		t.Errorf("item count = %d, want %d", doc.ItemCount(), help.Default().ItemCount())
	}
}

func TestGetHelp_StoreBacked(t *testing.T) {
	st, err := store.Initialize(t.TempDir())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer st.Close()

	h := NewServer(st, ServeConfig{Token: "tok"}).Handler()

	if w := do(t, h, "GET", "/api/help", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("empty store status = %d, want 404", w.Code)
	}

	body := `{"title":"Stored","sections":[{"id":"s","title":"S","items":["x"]}]}`
	w := do(t, h, "PUT", "/api/help", body, map[string]string{"Authorization": "Bearer tok"})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", w.Code, w.Body.String())
	}

	w = do(t, h, "GET", "/api/help", "", nil)
	var doc help.Response
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Stored" || len(doc.Sections) != 1 || doc.Sections[0].Items[0] != "x" {
		t.Errorf("unexpected stored document %+v", doc)
	}
}

// ============================================================================
// PUT /api/help
// ============================================================================

func TestPutHelp(t *testing.T) {
	valid := `{"title":"New","sections":[{"id":"a","title":"A","items":["1"]}]}`
	auth := map[string]string{"Authorization": "Bearer secret"}

	tests := []struct {
		name     string
		source   ContentSource
		token    string
		body     string
		headers  map[string]string
		wantCode int
		wantErr  string
	}{
		{"writes disabled without token", &memSource{}, "", valid, auth, http.StatusForbidden, ErrForbidden},
		{"missing header", &memSource{}, "secret", valid, nil, http.StatusUnauthorized, ErrUnauthorized},
		{"wrong scheme", &memSource{}, "secret", valid, map[string]string{"Authorization": "Basic secret"}, http.StatusUnauthorized, ErrUnauthorized},
		{"wrong token", &memSource{}, "secret", valid, map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized, ErrUnauthorized},
		{"token prefix", &memSource{}, "secret", valid, map[string]string{"Authorization": "Bearer secre"}, http.StatusUnauthorized, ErrUnauthorized},
		{"token with suffix", &memSource{}, "secret", valid, map[string]string{"Authorization": "Bearer secret2"}, http.StatusUnauthorized, ErrUnauthorized},
		{"read-only source", StaticSource{Doc: help.Default()}, "secret", valid, auth, http.StatusMethodNotAllowed, ErrReadOnly},
		{"malformed json", &memSource{}, "secret", `{"title":`, auth, http.StatusBadRequest, ErrValidation},
		{"missing title", &memSource{}, "secret", `{"sections":[]}`, auth, http.StatusBadRequest, ErrValidation},
		{"duplicate ids", &memSource{}, "secret", `{"title":"T","sections":[{"id":"a"},{"id":"a"}]}`, auth, http.StatusBadRequest, ErrValidation},
		{"accepted", &memSource{}, "secret", valid, auth, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewServer(tt.source, ServeConfig{Token: tt.token}).Handler()
			w := do(t, h, "PUT", "/api/help", tt.body, tt.headers)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			env := decodeEnvelope(t, w)
			if tt.wantErr == "" {
				if !env.OK {
					t.Errorf("expected ok envelope, got %+v", env.Error)
				}
				return
			}
			if env.Error == nil || env.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantErr)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	doc := &help.Response{
		Title: " ",
		Sections: []help.Section{
			{ID: "a"},
			{ID: ""},
			{ID: "a"},
		},
	}
	errs := ValidateDocument(doc)
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %+v", len(errs), errs)
	}
	want := []string{"title", "sections[1].id", "sections[2].id"}
	for i, f := range want {
		if errs[i].Field != f {
			t.Errorf("errs[%d].Field = %q, want %q", i, errs[i].Field, f)
		}
	}
	if errs[2].Rule != "unique" {
		t.Errorf("duplicate rule = %q, want unique", errs[2].Rule)
	}

	if errs := ValidateDocument(help.Default()); len(errs) != 0 {
		t.Errorf("default document should validate, got %+v", errs)
	}
}

// ============================================================================
// Middleware Tests
// ============================================================================

func TestHealthEndpoint(t *testing.T) {
	w := do(t, newTestServer(ServeConfig{Token: "secret"}).Handler(), "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	env := decodeEnvelope(t, w)
	if !env.OK {
		t.Error("ok = false, want true")
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(ServeConfig{}).Handler()

	w := do(t, h, "GET", "/health", "", nil)
	if _, err := uuid.Parse(w.Header().Get("X-Request-ID")); err != nil {
		t.Errorf("generated request id %q is not a uuid: %v", w.Header().Get("X-Request-ID"), err)
	}

	w = do(t, h, "GET", "/health", "", map[string]string{"X-Request-ID": "abc-123"})
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want caller's id echoed", got)
	}

	if RequestID(context.Background()) != "" {
		t.Error("RequestID outside a request should be empty")
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		origin     string
		method     string
		wantAllow  string
		wantStatus int
	}{
		{"not configured", "", "http://localhost:3000", "GET", "", http.StatusOK},
		{"matching origin", "http://localhost:3000", "http://localhost:3000", "GET", "http://localhost:3000", http.StatusOK},
		{"other origin", "http://localhost:3000", "http://evil.example", "GET", "", http.StatusOK},
		{"wildcard", "*", "http://anything.example", "GET", "http://anything.example", http.StatusOK},
		{"no origin header", "http://localhost:3000", "", "GET", "", http.StatusOK},
		{"preflight", "http://localhost:3000", "http://localhost:3000", "OPTIONS", "http://localhost:3000", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(ServeConfig{CORSOrigin: tt.configured}).Handler()
			headers := map[string]string{}
			if tt.origin != "" {
				headers["Origin"] = tt.origin
			}
			w := do(t, h, tt.method, "/api/help", "", headers)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestRecoveryMiddleware_CatchesPanic(t *testing.T) {
	srv := newTestServer(ServeConfig{})

	panicMux := http.NewServeMux()
	panicMux.HandleFunc("GET /panic", func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})
	srv.mux = panicMux

	w := do(t, srv.Handler(), "GET", "/panic", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	env := decodeEnvelope(t, w)
	if env.OK || env.Error == nil || env.Error.Code != ErrInternal {
		t.Errorf("error = %+v, want code %s", env.Error, ErrInternal)
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(ServeConfig{}).Handler()
	if w := do(t, h, "GET", "/api/other", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w := do(t, h, "DELETE", "/api/help", "", map[string]string{"Authorization": "Bearer x"}); w.Code == http.StatusOK {
		t.Error("DELETE /api/help should not succeed")
	}
}

// ============================================================================
// Lifecycle
// ============================================================================

func TestListenAndServe(t *testing.T) {
	srv := newTestServer(ServeConfig{Addr: "127.0.0.1", Port: 0})
	ctx, cancel := context.WithCancel(context.Background())

	portCh := make(chan int, 1)
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx, func(port int) { portCh <- port })
	}()

	var port int
	select {
	case port = <-portCh:
	case err := <-done:
		t.Fatalf("ListenAndServe returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}
	if port == 0 {
		t.Fatal("ready called with port 0")
	}

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/help", port))
	if err != nil {
		t.Fatalf("GET /api/help: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe after cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	if err := newTestServer(ServeConfig{}).Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown before start: %v", err)
	}
}
