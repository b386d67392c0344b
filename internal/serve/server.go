package serve

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/loanbuddy/helpctl/internal/help"
)

// ContentSource supplies the help document served on GET /api/help.
type ContentSource interface {
	Load(ctx context.Context) (*help.Response, error)
}

// ContentWriter is implemented by sources that accept PUT /api/help.
type ContentWriter interface {
	Replace(ctx context.Context, doc *help.Response) error
}

// StaticSource serves a fixed document. It backs the server when no
// database is configured.
type StaticSource struct {
	Doc *help.Response
}

// Load returns a copy of the wrapped document.
func (s StaticSource) Load(context.Context) (*help.Response, error) {
	if s.Doc == nil {
		return nil, nil
	}
	return s.Doc.Clone(), nil
}

// ServeConfig holds the configuration for the HTTP server.
type ServeConfig struct {
	Port       int
	Addr       string
	Token      string
	CORSOrigin string
}

// Server is the helpctl serve HTTP server.
type Server struct {
	source ContentSource
	config ServeConfig
	mux    *http.ServeMux
	http   *http.Server
	addr   net.Addr
}

// NewServer creates a new Server, registers all routes, and sets up the
// middleware chain.
func NewServer(source ContentSource, config ServeConfig) *Server {
	s := &Server{
		source: source,
		config: config,
		mux:    http.NewServeMux(),
	}

	s.registerRoutes()
	return s
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)

	// Final order (outermost to innermost):
	//   recovery -> logging -> CORS -> auth -> handler
	h = s.authMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.recoveryMiddleware(h)

	return h
}

// ListenAndServe starts the HTTP server on the configured address and port,
// and handles graceful shutdown when the context is cancelled. ready, if
// non-nil, is called with the bound port once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, ready func(port int)) error {
	addr := fmt.Sprintf("%s:%d", s.config.Addr, s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.addr = ln.Addr()

	s.http = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if ready != nil {
		ready(s.Port())
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Port returns the bound port, or the configured port before the server
// has started listening.
func (s *Server) Port() int {
	if tcp, ok := s.addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return s.config.Port
}

// Shutdown gracefully stops the HTTP server. If the server has not been started,
// this is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// ============================================================================
// Route Registration
// ============================================================================

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/help", s.handleGetHelp)
	s.mux.HandleFunc("PUT /api/help", s.handlePutHelp)
}

// ============================================================================
// Middleware
// ============================================================================

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id assigned to the request by the logging
// middleware, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

// recoveryMiddleware catches panics, logs the stack trace, and returns a 500
// error envelope.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()
				slog.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)
				WriteError(w, ErrInternal, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware tags each request with an id (echoing X-Request-ID when
// the caller sent one) and logs method, path, status code, and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, reqID))

		sr := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sr, r)
		slog.Info("req",
			"id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.code,
			"dur", time.Since(start).String(),
		)
	})
}

// corsMiddleware handles CORS preflight and sets response headers when
// CORSOrigin is configured. If no CORS origin is configured, the middleware
// is a no-op pass-through.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.CORSOrigin == "" {
			next.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if s.config.CORSOrigin != "*" && s.config.CORSOrigin != origin {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware guards write requests. Reads are public; writes are
// rejected outright unless a token is configured and presented.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if s.config.Token == "" {
			WriteError(w, ErrForbidden, "writes are disabled: start the server with --token", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteError(w, ErrUnauthorized, "missing authorization header", http.StatusUnauthorized)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			WriteError(w, ErrUnauthorized, "invalid authorization format", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.config.Token)) != 1 {
			WriteError(w, ErrUnauthorized, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
