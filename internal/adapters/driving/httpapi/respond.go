package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/logger"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}

// partialIndexResponse reports a failed batch along with the documents
// committed before the failure.
type partialIndexResponse struct {
	Detail        string   `json:"detail"`
	Success       bool     `json:"success"`
	DocumentIDs   []string `json:"document_ids"`
	ChunksCreated int      `json:"chunks_created"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeDomainError maps err onto an HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

// writeIndexError is writeDomainError for indexing calls. Documents the
// engine committed before failing are listed so clients can tell what is
// already searchable.
func writeIndexError(w http.ResponseWriter, err error, result *domain.IndexResult) {
	if result == nil || len(result.DocumentIDs) == 0 {
		writeDomainError(w, err)
		return
	}
	status := statusFor(err)
	logger.Error("indexing stopped after %d documents: %v", len(result.DocumentIDs), err)
	writeJSON(w, status, partialIndexResponse{
		Detail:        err.Error(),
		DocumentIDs:   result.DocumentIDs,
		ChunksCreated: result.ChunksCreated,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
