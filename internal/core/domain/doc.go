// Package domain defines the core business entities for DocMind.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A registered document and its chunk count
//   - Chunk: One retrievable window of a document's text
//   - Snapshot: The persisted index, chunk records and registry
//   - RankedChunk: A retrieval hit with its similarity score
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
