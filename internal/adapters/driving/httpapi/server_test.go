package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

func newTestHandler(t *testing.T, docs *mockDocumentService, query *mockQueryService, origins ...string) http.Handler {
	t.Helper()
	srv, err := NewServer(docs, query, Config{Version: "1.2.3", AllowedOrigins: origins})
	require.NoError(t, err)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(nil, &mockQueryService{}, Config{})
	assert.Error(t, err)

	_, err = NewServer(&mockDocumentService{}, nil, Config{})
	assert.Error(t, err)

	srv, err := NewServer(&mockDocumentService{}, &mockQueryService{}, Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, srv.Addr())
}

func TestRoot(t *testing.T) {
	h := newTestHandler(t, &mockDocumentService{}, &mockQueryService{})

	rec := do(t, h, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "DocMind running!", body["message"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestHealth(t *testing.T) {
	docs := &mockDocumentService{stats: domain.IndexStats{Documents: 2, Chunks: 5, Dimension: 256}}
	h := newTestHandler(t, docs, &mockQueryService{llm: true})

	rec := do(t, h, http.MethodGet, "/api/v1/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(2), body["documents"])
	assert.Equal(t, float64(5), body["chunks"])
	assert.Equal(t, true, body["llm_ready"])
}

func TestUnknownRoute(t *testing.T) {
	h := newTestHandler(t, &mockDocumentService{}, &mockQueryService{})

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPut, "/api/v1/documents", "").Code)
}

func TestCreateDocuments(t *testing.T) {
	docs := &mockDocumentService{result: &domain.IndexResult{DocumentIDs: []string{"a", "b"}, ChunksCreated: 4}}
	h := newTestHandler(t, docs, &mockQueryService{})

	rec := do(t, h, http.MethodPost, "/api/v1/documents",
		`{"documents":[{"title":"A","content":"one"},{"title":"B","content":"two"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Indexed 2 documents.", body["message"])
	assert.Equal(t, []any{"a", "b"}, body["document_ids"])
	assert.Equal(t, float64(4), body["chunks_created"])
	assert.Equal(t, []domain.DocumentInput{{Title: "A", Content: "one"}, {Title: "B", Content: "two"}}, docs.indexed)
}

func TestCreateDocuments_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "malformed json", body: `{"documents":`, wantStatus: http.StatusBadRequest},
		{name: "embedding failure", body: `{"documents":[]}`, err: domain.ErrEmbeddingFailed, wantStatus: http.StatusInternalServerError},
		{name: "embedding unavailable", body: `{"documents":[]}`, err: domain.ErrEmbeddingUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "configuration", body: `{"documents":[]}`, err: domain.ErrConfiguration, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &mockDocumentService{err: tt.err, result: &domain.IndexResult{}}, &mockQueryService{})

			rec := do(t, h, http.MethodPost, "/api/v1/documents", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["detail"])
		})
	}
}

func TestCreateDocuments_PartialFailureListsCommitted(t *testing.T) {
	docs := &mockDocumentService{
		result: &domain.IndexResult{DocumentIDs: []string{"a"}, ChunksCreated: 2},
		err:    fmt.Errorf("%w: %w", domain.ErrIndexingFailed, domain.ErrEmbeddingFailed),
	}
	h := newTestHandler(t, docs, &mockQueryService{})

	rec := do(t, h, http.MethodPost, "/api/v1/documents",
		`{"documents":[{"title":"A","content":"one"},{"title":"B","content":"two"}]}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, []any{"a"}, body["document_ids"])
	assert.Equal(t, float64(2), body["chunks_created"])
	assert.Contains(t, body["detail"], "indexing failed")
}

func TestUpload_PartialFailureListsCommitted(t *testing.T) {
	docs := &mockDocumentService{
		result: &domain.IndexResult{DocumentIDs: []string{"a"}, ChunksCreated: 1},
		err:    fmt.Errorf("%w: %w", domain.ErrIndexingFailed, domain.ErrEmbeddingFailed),
	}
	h := newTestHandler(t, docs, &mockQueryService{})
	body, contentType := multipartBody(t, map[string]string{"a.txt": "one", "b.txt": "two"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []any{"a"}, decode(t, rec)["document_ids"])
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	docs := &mockDocumentService{result: &domain.IndexResult{DocumentIDs: []string{"a"}, ChunksCreated: 1}}
	h := newTestHandler(t, docs, &mockQueryService{})
	body, contentType := multipartBody(t, map[string]string{"notes.txt": "hello world"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Uploaded & indexed 1 files.", decode(t, rec)["message"])
	require.Len(t, docs.uploads, 1)
	assert.Equal(t, "notes.txt", docs.uploads[0].Filename)
	assert.Equal(t, []byte("hello world"), docs.uploads[0].Data)
}

func TestUpload_Errors(t *testing.T) {
	t.Run("not multipart", func(t *testing.T) {
		h := newTestHandler(t, &mockDocumentService{}, &mockQueryService{})

		rec := do(t, h, http.MethodPost, "/api/v1/documents/upload", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no files", func(t *testing.T) {
		h := newTestHandler(t, &mockDocumentService{}, &mockQueryService{})
		body, contentType := multipartBody(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "no files uploaded", decode(t, rec)["detail"])
	})

	t.Run("unsupported format", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.Join(domain.ErrUnsupportedFormat, errors.New("Unsupported file: .exe"))}
		h := newTestHandler(t, docs, &mockQueryService{})
		body, contentType := multipartBody(t, map[string]string{"virus.exe": "MZ"})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode(t, rec)["detail"], ".exe")
	})
}

func TestListDocuments(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	docs := &mockDocumentService{docs: []domain.Document{{ID: "a", Title: "Doc A", ChunkCount: 3, CreatedAt: created}}}
	h := newTestHandler(t, docs, &mockQueryService{})

	rec := do(t, h, http.MethodGet, "/api/v1/documents", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["count"])
	list := body["documents"].([]any)
	require.Len(t, list, 1)
	doc := list[0].(map[string]any)
	assert.Equal(t, "a", doc["id"])
	assert.Equal(t, "Doc A", doc["title"])
	assert.Equal(t, float64(3), doc["chunk_count"])
}

func TestListDocuments_Empty(t *testing.T) {
	h := newTestHandler(t, &mockDocumentService{}, &mockQueryService{})

	rec := do(t, h, http.MethodGet, "/api/v1/documents", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["documents"])
}

func TestDeleteDocument(t *testing.T) {
	tests := []struct {
		name       string
		deleted    bool
		err        error
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{name: "deleted", deleted: true, wantStatus: http.StatusOK, wantKey: "message", wantValue: "Deleted document doc-1"},
		{name: "not found", wantStatus: http.StatusNotFound, wantKey: "detail", wantValue: "Document not found"},
		{name: "persist failure", err: errors.New("disk full"), wantStatus: http.StatusInternalServerError, wantKey: "detail", wantValue: "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := &mockDocumentService{deleted: tt.deleted, err: tt.err}
			h := newTestHandler(t, docs, &mockQueryService{})

			rec := do(t, h, http.MethodDelete, "/api/v1/documents/doc-1", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "doc-1", docs.deletedID)
			assert.Equal(t, tt.wantValue, decode(t, rec)[tt.wantKey])
		})
	}
}

func TestQuery(t *testing.T) {
	query := &mockQueryService{answer: &domain.Answer{
		Question: "what?",
		Text:     "An answer.",
		Sources:  []domain.RankedChunk{{DocumentID: "a", Title: "Doc A", Content: "text", Score: 0.5}},
	}}
	h := newTestHandler(t, &mockDocumentService{}, query)

	rec := do(t, h, http.MethodPost, "/api/v1/query", `{"question":"what?","top_k":5,"temperature":0.2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "An answer.", body["answer"])
	assert.Equal(t, "what?", body["question"])
	sources := body["sources"].([]any)
	require.Len(t, sources, 1)
	assert.Equal(t, "a", sources[0].(map[string]any)["doc_id"])
	assert.Equal(t, 5, query.opts.TopK)
	assert.InDelta(t, 0.2, query.opts.Temperature, 1e-9)
}

func TestQuery_Defaults(t *testing.T) {
	query := &mockQueryService{answer: &domain.Answer{Text: domain.NoResultsAnswer}}
	h := newTestHandler(t, &mockDocumentService{}, query)

	rec := do(t, h, http.MethodPost, "/api/v1/query", `{"question":"what?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, domain.NoResultsAnswer, body["answer"])
	assert.Equal(t, []any{}, body["sources"])
	assert.Equal(t, domain.DefaultTopK, query.opts.TopK)
	assert.InDelta(t, domain.DefaultTemperature, query.opts.Temperature, 1e-9)
}

func TestQuery_ExplicitZeroTemperature(t *testing.T) {
	query := &mockQueryService{answer: &domain.Answer{}}
	h := newTestHandler(t, &mockDocumentService{}, query)

	do(t, h, http.MethodPost, "/api/v1/query", `{"question":"what?","temperature":0}`)

	assert.Zero(t, query.opts.Temperature)
}

func TestQuery_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid input", err: domain.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "llm unavailable", err: domain.ErrLLMUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "other", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &mockDocumentService{}, &mockQueryService{err: tt.err})

			rec := do(t, h, http.MethodPost, "/api/v1/query", `{"question":"what?"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func readLines(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var lines []map[string]any
	sc := bufio.NewScanner(rec.Body)
	for sc.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestQueryStream(t *testing.T) {
	query := &mockQueryService{events: []domain.StreamEvent{
		{Type: domain.StreamEventSources, Sources: []domain.RankedChunk{{DocumentID: "a", Score: 1}}},
		{Type: domain.StreamEventAnswer, Content: "An "},
		{Type: domain.StreamEventAnswer, Content: "answer."},
	}}
	h := newTestHandler(t, &mockDocumentService{}, query)

	rec := do(t, h, http.MethodPost, "/api/v1/query/stream", `{"question":"what?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
	lines := readLines(t, rec)
	require.Len(t, lines, 3)
	assert.Equal(t, "sources", lines[0]["type"])
	sources := lines[0]["content"].([]any)
	assert.Equal(t, "a", sources[0].(map[string]any)["doc_id"])
	assert.Equal(t, map[string]any{"type": "answer", "content": "An "}, lines[1])
	assert.Equal(t, map[string]any{"type": "answer", "content": "answer."}, lines[2])
}

func TestQueryStream_NoResults(t *testing.T) {
	query := &mockQueryService{events: []domain.StreamEvent{
		{Type: domain.StreamEventAnswer, Content: domain.NoResultsAnswer},
	}}
	h := newTestHandler(t, &mockDocumentService{}, query)

	rec := do(t, h, http.MethodPost, "/api/v1/query/stream", `{"question":"what?"}`)

	lines := readLines(t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, map[string]any{"type": "answer", "content": "No relevant info found."}, lines[0])
}

func TestQueryStream_ErrorBeforeStart(t *testing.T) {
	h := newTestHandler(t, &mockDocumentService{}, &mockQueryService{err: domain.ErrLLMUnavailable})

	rec := do(t, h, http.MethodPost, "/api/v1/query/stream", `{"question":"what?"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestQueryStream_ErrorMidStream(t *testing.T) {
	query := &mockQueryService{
		events: []domain.StreamEvent{
			{Type: domain.StreamEventSources, Sources: []domain.RankedChunk{{DocumentID: "a"}}},
			{Type: domain.StreamEventAnswer, Content: "An "},
		},
		streamErr: errors.New("connection reset"),
	}
	h := newTestHandler(t, &mockDocumentService{}, query)

	rec := do(t, h, http.MethodPost, "/api/v1/query/stream", `{"question":"what?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	lines := readLines(t, rec)
	require.Len(t, lines, 3)
	assert.Equal(t, "error", lines[2]["type"])
	assert.Equal(t, "connection reset", lines[2]["content"])
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantHeader string
	}{
		{name: "wildcard echoes origin", origins: []string{"*"}, origin: "http://app.test", wantHeader: "http://app.test"},
		{name: "listed origin", origins: []string{"http://app.test"}, origin: "http://app.test", wantHeader: "http://app.test"},
		{name: "unlisted origin", origins: []string{"http://app.test"}, origin: "http://evil.test", wantHeader: ""},
		{name: "no origin header", origins: []string{"*"}, origin: "", wantHeader: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &mockDocumentService{}, &mockQueryService{}, tt.origins...)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantHeader, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := newTestHandler(t, &mockDocumentService{}, &mockQueryService{}, "*")
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/query", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	srv, err := NewServer(&mockDocumentService{}, &mockQueryService{}, Config{Addr: "127.0.0.1:0"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
