package domain

import (
	"strings"
	"time"
)

// UntitledDocument is the title given to documents submitted without one.
const UntitledDocument = "Untitled"

// Document is a registered document. It is created once per indexing call,
// never mutated, and removed together with all of its chunks.
type Document struct {
	// ID is a random 128-bit identifier in canonical UUID form.
	ID string `json:"id"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// ChunkCount is the number of chunks indexed for the document.
	ChunkCount int `json:"chunk_count"`

	// CreatedAt is when the document was indexed, in UTC.
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is the metadata record paired with one vector in the index.
// The i-th chunk always describes the i-th indexed vector.
type Chunk struct {
	// DocumentID links to the owning Document.
	DocumentID string `json:"doc_id"`

	// Title is the owning document's title at indexing time.
	Title string `json:"title"`

	// Index is the zero-based position of the chunk within its document.
	Index int `json:"chunk_index"`

	// Content is the chunk text.
	Content string `json:"content"`
}

// DocumentInput is a document submitted for indexing.
type DocumentInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ResolvedTitle returns the trimmed title, or UntitledDocument when empty.
func (d DocumentInput) ResolvedTitle() string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return t
	}
	return UntitledDocument
}

// Upload is a raw file submitted for extraction and indexing.
type Upload struct {
	// Filename is the original file name; its extension selects the extractor.
	Filename string

	// Data is the raw file content.
	Data []byte
}

// IndexResult summarises an indexing batch.
type IndexResult struct {
	// DocumentIDs holds the IDs of documents committed, in input order.
	DocumentIDs []string

	// ChunksCreated is the total number of chunks appended.
	ChunksCreated int
}

// IndexStats summarises the engine's current contents.
type IndexStats struct {
	Documents int
	Chunks    int
	Dimension int
}
