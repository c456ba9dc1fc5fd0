package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// DocumentService manages the indexed document collection.
type DocumentService interface {
	// Index chunks, embeds and indexes a batch of documents.
	// On failure the returned result lists the documents committed before
	// the failing one, alongside the error.
	Index(ctx context.Context, docs []domain.DocumentInput) (*domain.IndexResult, error)

	// Upload extracts text from files and indexes them, titled by filename.
	// An unsupported format rejects the whole batch before anything is indexed.
	Upload(ctx context.Context, uploads []domain.Upload) (*domain.IndexResult, error)

	// List returns every registered document in insertion order.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document and all of its chunks.
	// Returns false with a nil error when the document does not exist.
	Delete(ctx context.Context, documentID string) (bool, error)

	// Stats returns document and chunk counts.
	Stats(ctx context.Context) domain.IndexStats
}
