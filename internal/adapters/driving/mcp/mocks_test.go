package mcp

import (
	"context"
	"testing"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	results []domain.RankedChunk
	answer  *domain.Answer
	llm     bool
	err     error

	query string
	opts  domain.SearchOptions
}

var _ driving.QueryService = (*mockQueryService)(nil)

func (m *mockQueryService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.RankedChunk, error) {
	m.query, m.opts = query, opts
	return m.results, m.err
}

func (m *mockQueryService) Ask(_ context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error) {
	m.query, m.opts = question, opts
	return m.answer, m.err
}

func (m *mockQueryService) AskStream(
	_ context.Context,
	_ string,
	_ domain.SearchOptions,
	_ func(domain.StreamEvent) error,
) error {
	return m.err
}

func (m *mockQueryService) LLMAvailable() bool {
	return m.llm
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	result    *domain.IndexResult
	deleted   bool
	stats     domain.IndexStats
	err       error

	indexed   []domain.DocumentInput
	deletedID string
}

var _ driving.DocumentService = (*mockDocumentService)(nil)

func (m *mockDocumentService) Index(_ context.Context, docs []domain.DocumentInput) (*domain.IndexResult, error) {
	m.indexed = docs
	return m.result, m.err
}

func (m *mockDocumentService) Upload(_ context.Context, _ []domain.Upload) (*domain.IndexResult, error) {
	return m.result, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id string) (bool, error) {
	m.deletedID = id
	return m.deleted, m.err
}

func (m *mockDocumentService) Stats(_ context.Context) domain.IndexStats {
	return m.stats
}

func newTestServer(t *testing.T, query *mockQueryService, docs *mockDocumentService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Query: query, Document: docs})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return server
}
