// Package httpapi exposes DocMind over a JSON HTTP API.
//
// Routes:
//
//	GET    /                          service name and version
//	GET    /api/v1/                   health and index counts
//	POST   /api/v1/documents          index JSON documents
//	POST   /api/v1/documents/upload   index multipart file uploads
//	GET    /api/v1/documents          list documents
//	DELETE /api/v1/documents/{id}     delete a document
//	POST   /api/v1/query              answer a question
//	POST   /api/v1/query/stream       answer a question as NDJSON events
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// Default configuration values.
const (
	DefaultAddr           = ":8000"
	DefaultMaxUploadBytes = 32 << 20
	shutdownTimeout       = 10 * time.Second
)

// ServiceName is reported by the root route.
const ServiceName = "DocMind"

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address (default: :8000).
	Addr string

	// AllowedOrigins lists CORS origins. "*" allows any origin.
	AllowedOrigins []string

	// Version is reported by the root route.
	Version string

	// MaxUploadBytes caps the size of a multipart upload request.
	MaxUploadBytes int64
}

// Server serves the HTTP API.
type Server struct {
	documents driving.DocumentService
	query     driving.QueryService
	cfg       Config
}

// NewServer creates an HTTP API server over the driving ports.
func NewServer(documents driving.DocumentService, query driving.QueryService, cfg Config) (*Server, error) {
	if documents == nil {
		return nil, errors.New("httpapi: document service is required")
	}
	if query == nil {
		return nil, errors.New("httpapi: query service is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Server{documents: documents, query: query, cfg: cfg}, nil
}

// Handler returns the routed handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/v1/{$}", s.handleHealth)
	mux.HandleFunc("POST /api/v1/documents", s.handleCreateDocuments)
	mux.HandleFunc("POST /api/v1/documents/upload", s.handleUpload)
	mux.HandleFunc("GET /api/v1/documents", s.handleListDocuments)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", s.handleDeleteDocument)
	mux.HandleFunc("POST /api/v1/query", s.handleQuery)
	mux.HandleFunc("POST /api/v1/query/stream", s.handleQueryStream)

	return logRequests(cors(s.cfg.AllowedOrigins, mux))
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", s.cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	}
}
