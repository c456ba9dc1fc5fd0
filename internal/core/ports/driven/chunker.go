package driven

// Chunker splits document text into overlapping retrieval units.
// Implementations are pure: the same text always yields the same chunks.
// Invalid window settings are rejected when the chunker is constructed.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Chunk splits text into non-empty chunks in document order.
	Chunk(text string) []string
}
