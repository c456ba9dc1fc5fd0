package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentInput_ResolvedTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"keeps title", "Doc A", "Doc A"},
		{"trims whitespace", "  Doc B \n", "Doc B"},
		{"empty becomes untitled", "", UntitledDocument},
		{"blank becomes untitled", "   ", UntitledDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DocumentInput{Title: tt.title, Content: "body"}
			assert.Equal(t, tt.want, in.ResolvedTitle())
		})
	}
}
