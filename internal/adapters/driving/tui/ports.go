// Package tui provides an interactive terminal interface for asking
// questions about indexed documents and managing the collection.
package tui

import (
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Query answers questions.
	Query driving.QueryService

	// Document lists and deletes indexed documents.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
