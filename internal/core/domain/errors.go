package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates an invalid setting, such as a chunk
	// overlap that is not smaller than the chunk size.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates the embedding gateway could not produce a vector.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrIndexingFailed indicates a batch of documents could not be fully indexed.
	ErrIndexingFailed = errors.New("indexing failed")

	// ErrExtractionFailed indicates text could not be extracted from an upload.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrUnsupportedFormat indicates an upload whose format has no extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrIndexIntegrity indicates the vector index, chunk records and registry
	// no longer describe the same chunks.
	ErrIndexIntegrity = errors.New("index integrity violated")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Question answering is disabled; retrieval still works.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
