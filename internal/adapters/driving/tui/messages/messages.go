// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/docmind/internal/core/domain"
)

// AnswerCompleted carries a generated answer back to the model.
type AnswerCompleted struct {
	Answer *domain.Answer
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewDocuments lists indexed documents.
	ViewDocuments
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewDocuments:
		return "documents"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// DocumentsLoaded carries the document list and index counts.
type DocumentsLoaded struct {
	Documents []domain.Document
	Stats     domain.IndexStats
	Err       error
}

// DocumentDeleted signals a delete finished. Found is false when the
// document no longer existed.
type DocumentDeleted struct {
	DocumentID string
	Found      bool
	Err        error
}
