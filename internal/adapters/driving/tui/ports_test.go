package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{name: "nil ports", ports: nil, want: ErrInvalidPorts},
		{name: "missing query", ports: &Ports{Document: &mockDocumentService{}}, want: ErrMissingQueryService},
		{name: "missing document", ports: &Ports{Query: &mockQueryService{}}, want: ErrMissingDocumentService},
		{name: "complete", ports: &Ports{Query: &mockQueryService{}, Document: &mockDocumentService{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ports.Validate())
		})
	}
}
