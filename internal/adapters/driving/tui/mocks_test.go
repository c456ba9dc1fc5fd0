package tui

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

type mockQueryService struct {
	answer *domain.Answer
	err    error
}

func (m *mockQueryService) Search(context.Context, string, domain.SearchOptions) ([]domain.RankedChunk, error) {
	return nil, nil
}

func (m *mockQueryService) Ask(_ context.Context, question string, _ domain.SearchOptions) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Question: question, Text: domain.NoResultsAnswer}, nil
}

func (m *mockQueryService) AskStream(context.Context, string, domain.SearchOptions, func(domain.StreamEvent) error) error {
	return nil
}

func (m *mockQueryService) LLMAvailable() bool { return m.err == nil }

type mockDocumentService struct {
	docs  []domain.Document
	stats domain.IndexStats
}

func (m *mockDocumentService) Index(context.Context, []domain.DocumentInput) (*domain.IndexResult, error) {
	return &domain.IndexResult{}, nil
}

func (m *mockDocumentService) Upload(context.Context, []domain.Upload) (*domain.IndexResult, error) {
	return &domain.IndexResult{}, nil
}

func (m *mockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockDocumentService) Delete(context.Context, string) (bool, error) {
	return true, nil
}

func (m *mockDocumentService) Stats(context.Context) domain.IndexStats {
	return m.stats
}
