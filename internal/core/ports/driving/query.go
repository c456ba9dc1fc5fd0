package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// QueryService answers questions from indexed documents.
type QueryService interface {
	// Search returns the chunks nearest to the query, nearest first.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.RankedChunk, error)

	// Ask retrieves context and generates a complete answer.
	Ask(ctx context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error)

	// AskStream retrieves context and emits the answer incrementally:
	// one sources event first, then answer fragments in generation order.
	// Returning an error from emit stops the stream.
	AskStream(ctx context.Context, question string, opts domain.SearchOptions, emit func(domain.StreamEvent) error) error

	// LLMAvailable reports whether answers can be generated.
	LLMAvailable() bool
}
