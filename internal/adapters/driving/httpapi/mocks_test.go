package httpapi

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

type mockDocumentService struct {
	result  *domain.IndexResult
	docs    []domain.Document
	deleted bool
	stats   domain.IndexStats
	err     error

	indexed   []domain.DocumentInput
	uploads   []domain.Upload
	deletedID string
}

var _ driving.DocumentService = (*mockDocumentService)(nil)

func (m *mockDocumentService) Index(_ context.Context, docs []domain.DocumentInput) (*domain.IndexResult, error) {
	m.indexed = docs
	return m.result, m.err
}

func (m *mockDocumentService) Upload(_ context.Context, uploads []domain.Upload) (*domain.IndexResult, error) {
	m.uploads = uploads
	return m.result, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id string) (bool, error) {
	m.deletedID = id
	return m.deleted, m.err
}

func (m *mockDocumentService) Stats(_ context.Context) domain.IndexStats {
	return m.stats
}

type mockQueryService struct {
	answer *domain.Answer
	events []domain.StreamEvent
	// streamErr is returned after events have been emitted.
	streamErr error
	llm       bool
	err       error

	question string
	opts     domain.SearchOptions
}

var _ driving.QueryService = (*mockQueryService)(nil)

func (m *mockQueryService) Search(_ context.Context, _ string, _ domain.SearchOptions) ([]domain.RankedChunk, error) {
	return nil, m.err
}

func (m *mockQueryService) Ask(_ context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error) {
	m.question, m.opts = question, opts
	return m.answer, m.err
}

func (m *mockQueryService) AskStream(
	_ context.Context, question string, opts domain.SearchOptions, emit func(domain.StreamEvent) error,
) error {
	m.question, m.opts = question, opts
	if m.err != nil {
		return m.err
	}
	for _, ev := range m.events {
		if err := emit(ev); err != nil {
			return err
		}
	}
	return m.streamErr
}

func (m *mockQueryService) LLMAvailable() bool {
	return m.llm
}
