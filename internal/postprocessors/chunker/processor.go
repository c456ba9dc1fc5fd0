// Package chunker provides a fixed-size word-window text chunker.
package chunker

import (
	"strings"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Name is the registry name of the word-window chunker.
const Name = "words"

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping words.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Verify interface compliance.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits text into windows of whole words.
// Windows start every size-overlap words, so consecutive chunks share
// overlap words. The final chunk may be shorter than size.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker with the given options.
// Returns domain.ErrConfiguration unless size > overlap >= 0.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := (domain.ChunkingSettings{Size: p.chunkSize, Overlap: p.overlap}).Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Name returns the chunker name.
func (p *Processor) Name() string {
	return Name
}

// Size returns the chunk size in words.
func (p *Processor) Size() int {
	return p.chunkSize
}

// Overlap returns the overlap in words.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits text on whitespace and joins each window with single spaces.
// Text with no words produces no chunks.
func (p *Processor) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := p.chunkSize - p.overlap
	chunks := make([]string, 0, len(words)/step+1)

	for start := 0; start < len(words); start += step {
		end := min(start+p.chunkSize, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks
}
