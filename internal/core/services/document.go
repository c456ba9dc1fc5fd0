package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService indexes, lists and deletes documents through the Engine.
type DocumentService struct {
	engine     *Engine
	extractors map[domain.Format]driven.TextExtractor
}

// NewDocumentService creates a new document service.
// Each extractor is registered for every format it supports; later
// extractors win when formats overlap.
func NewDocumentService(engine *Engine, extractors ...driven.TextExtractor) *DocumentService {
	s := &DocumentService{
		engine:     engine,
		extractors: make(map[domain.Format]driven.TextExtractor),
	}
	for _, x := range extractors {
		for _, f := range x.SupportedFormats() {
			s.extractors[f] = x
		}
	}
	return s
}

// Index chunks, embeds and indexes a batch of documents.
func (s *DocumentService) Index(ctx context.Context, docs []domain.DocumentInput) (*domain.IndexResult, error) {
	return s.engine.Index(ctx, docs)
}

// Upload extracts text from every file and indexes the batch.
// Formats are checked for the whole batch first, so an unsupported file
// rejects the batch before any text is extracted or indexed.
func (s *DocumentService) Upload(ctx context.Context, uploads []domain.Upload) (*domain.IndexResult, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", domain.ErrInvalidInput)
	}

	extractors := make([]driven.TextExtractor, len(uploads))
	for i, u := range uploads {
		format, err := domain.FormatFromFilename(u.Filename)
		if err != nil {
			return nil, fmt.Errorf("upload %q: %w", u.Filename, err)
		}
		x, ok := s.extractors[format]
		if !ok {
			return nil, fmt.Errorf("upload %q: %w: no extractor for %s", u.Filename, domain.ErrUnsupportedFormat, format)
		}
		extractors[i] = x
	}

	docs := make([]domain.DocumentInput, len(uploads))
	for i, u := range uploads {
		text, err := extractors[i].Extract(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("upload %q: %w", u.Filename, err)
		}
		logger.Debug("Extracted %d bytes of text from %s", len(text), u.Filename)
		docs[i] = domain.DocumentInput{Title: filepath.Base(u.Filename), Content: text}
	}

	return s.engine.Index(ctx, docs)
}

// List returns every registered document in insertion order.
func (s *DocumentService) List(_ context.Context) ([]domain.Document, error) {
	return s.engine.List(), nil
}

// Delete removes a document and all of its chunks.
func (s *DocumentService) Delete(ctx context.Context, documentID string) (bool, error) {
	if documentID == "" {
		return false, nil
	}
	return s.engine.Delete(ctx, documentID)
}

// Stats returns document and chunk counts.
func (s *DocumentService) Stats(_ context.Context) domain.IndexStats {
	return s.engine.Stats()
}
