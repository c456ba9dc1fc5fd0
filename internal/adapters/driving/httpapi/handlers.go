package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

type documentInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type createDocumentsRequest struct {
	Documents []documentInput `json:"documents"`
}

type documentResponse struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	DocumentIDs   []string `json:"document_ids"`
	ChunksCreated int      `json:"chunks_created"`
}

type documentListResponse struct {
	Success   bool              `json:"success"`
	Count     int               `json:"count"`
	Documents []domain.Document `json:"documents"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type queryRequest struct {
	Question    string   `json:"question"`
	TopK        int      `json:"top_k"`
	Temperature *float64 `json:"temperature"`
}

func (q queryRequest) options() domain.SearchOptions {
	opts := domain.DefaultSearchOptions()
	if q.TopK != 0 {
		opts.TopK = q.TopK
	}
	if q.Temperature != nil {
		opts.Temperature = *q.Temperature
	}
	return opts
}

type queryResponse struct {
	Success  bool                 `json:"success"`
	Answer   string               `json:"answer"`
	Sources  []domain.RankedChunk `json:"sources"`
	Question string               `json:"question"`
}

// streamLine is one NDJSON line of a streamed answer.
type streamLine struct {
	Type    string `json:"type"`
	Content any    `json:"content"`
}

// streamEventError is sent when the stream fails after it has started.
const streamEventError = "error"

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": ServiceName + " running!",
		"version": s.cfg.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.documents.Stats(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"documents": stats.Documents,
		"chunks":    stats.Chunks,
		"dimension": stats.Dimension,
		"llm_ready": s.query.LLMAvailable(),
	})
}

func (s *Server) handleCreateDocuments(w http.ResponseWriter, r *http.Request) {
	var req createDocumentsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs := make([]domain.DocumentInput, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = domain.DocumentInput{Title: d.Title, Content: d.Content}
	}

	result, err := s.documents.Index(r.Context(), docs)
	if err != nil {
		writeIndexError(w, err, result)
		return
	}

	writeJSON(w, http.StatusOK, newDocumentResponse(fmt.Sprintf("Indexed %d documents.", len(docs)), result))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	uploads := make([]domain.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("reading %s: %v", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("reading %s: %v", fh.Filename, err))
			return
		}
		uploads = append(uploads, domain.Upload{Filename: fh.Filename, Data: data})
	}

	result, err := s.documents.Upload(r.Context(), uploads)
	if err != nil {
		writeIndexError(w, err, result)
		return
	}

	writeJSON(w, http.StatusOK, newDocumentResponse(fmt.Sprintf("Uploaded & indexed %d files.", len(uploads)), result))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	writeJSON(w, http.StatusOK, documentListResponse{Success: true, Count: len(docs), Documents: docs})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := s.documents.Delete(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Deleted document " + id})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	answer, err := s.query.Ask(r.Context(), req.Question, req.options())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.RankedChunk{}
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Success:  true,
		Answer:   answer.Text,
		Sources:  sources,
		Question: req.Question,
	})
}

// handleQueryStream writes one JSON object per line. Errors before the
// first event get a normal error response; later errors end the stream
// with an error line, since the status has already been sent.
func (s *Server) handleQueryStream(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	started := false

	emit := func(ev domain.StreamEvent) error {
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			started = true
		}

		line := streamLine{Type: string(ev.Type), Content: ev.Content}
		if ev.Type == domain.StreamEventSources {
			sources := ev.Sources
			if sources == nil {
				sources = []domain.RankedChunk{}
			}
			line.Content = sources
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	err := s.query.AskStream(r.Context(), req.Question, req.options(), emit)
	if err == nil {
		return
	}
	if !started {
		writeDomainError(w, err)
		return
	}
	if r.Context().Err() != nil {
		// Client went away; nothing left to write to.
		return
	}
	_ = enc.Encode(streamLine{Type: streamEventError, Content: err.Error()})
	if flusher != nil {
		flusher.Flush()
	}
}

func newDocumentResponse(message string, result *domain.IndexResult) documentResponse {
	ids := result.DocumentIDs
	if ids == nil {
		ids = []string{}
	}
	return documentResponse{
		Success:       true,
		Message:       message,
		DocumentIDs:   ids,
		ChunksCreated: result.ChunksCreated,
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
