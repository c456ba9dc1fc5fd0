// Package normalisers provides text extractors for uploaded files.
// Each extractor knows how to turn the bytes of a specific format into
// plain text for chunking.
//
// Extractors are registered with the DocumentService at startup.
package normalisers
