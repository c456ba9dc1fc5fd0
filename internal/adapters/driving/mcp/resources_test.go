package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents", func(t *testing.T) {
		docs := &mockDocumentService{documents: []domain.Document{{ID: "doc-1", Title: "Doc A", ChunkCount: 3}}}
		server := newTestServer(t, &mockQueryService{}, docs)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docmind://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "docmind://documents", result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "doc-1")
		assert.Contains(t, result.Contents[0].Text, `"chunk_count": 3`)
	})

	t.Run("empty index returns empty list", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{}, &mockDocumentService{})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docmind://documents"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("list error", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{}, &mockDocumentService{err: errors.New("boom")})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docmind://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleStatsResource(t *testing.T) {
	docs := &mockDocumentService{stats: domain.IndexStats{Documents: 2, Chunks: 7, Dimension: 256}}
	server := newTestServer(t, &mockQueryService{llm: true}, docs)

	result, err := server.handleStatsResource(context.Background(), makeReadResourceRequest("docmind://stats"))

	require.NoError(t, err)
	var stats map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &stats))
	assert.Equal(t, float64(2), stats["documents"])
	assert.Equal(t, float64(7), stats["chunks"])
	assert.Equal(t, float64(256), stats["dimension"])
	assert.Equal(t, true, stats["llm_available"])
}
