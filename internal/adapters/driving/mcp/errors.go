// Package mcp provides an MCP (Model Context Protocol) server adapter for DocMind.
// It lets AI assistants search, query and manage the indexed document collection.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")
