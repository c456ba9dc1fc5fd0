package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider(t *testing.T) {
	tests := []struct {
		provider AIProvider
		valid    bool
		apiKey   bool
		local    bool
	}{
		{AIProviderOllama, true, false, true},
		{AIProviderOpenAI, true, true, false},
		{AIProviderLocal, true, false, true},
		{AIProvider("anthropic"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.provider.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
			assert.Equal(t, tt.apiKey, tt.provider.RequiresAPIKey())
			assert.Equal(t, tt.local, tt.provider.IsLocal())
			if tt.valid {
				assert.NotEqual(t, unknownDescription, tt.provider.Description())
			} else {
				assert.Equal(t, unknownDescription, tt.provider.Description())
			}
		})
	}
}

func TestChunkingSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"defaults", DefaultChunkSize, DefaultChunkOverlap, false},
		{"no overlap", 4, 0, false},
		{"step of one", 4, 3, false},
		{"overlap equals size", 4, 4, true},
		{"overlap exceeds size", 4, 6, true},
		{"zero size", 0, 0, true},
		{"negative overlap", 4, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ChunkingSettings{Size: tt.size, Overlap: tt.overlap}.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmbeddingSettings(t *testing.T) {
	assert.False(t, EmbeddingSettings{}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderLocal}.IsConfigured())

	assert.Equal(t, 64, EmbeddingSettings{Model: "nomic-embed-text", Dimensions: 64}.ResolvedDimensions())
	assert.Equal(t, 768, EmbeddingSettings{Model: "nomic-embed-text"}.ResolvedDimensions())
	assert.Equal(t, DefaultEmbeddingDimensions, EmbeddingSettings{Model: "custom"}.ResolvedDimensions())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.False(t, LLMSettings{}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderLocal}.IsConfigured(), "local provider has no LLM")
	assert.False(t, LLMSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOpenAI, APIKey: "sk"}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	require.NoError(t, s.Chunking.Validate())
	assert.Equal(t, 500, s.Chunking.Size)
	assert.Equal(t, 50, s.Chunking.Overlap)
	assert.True(t, s.Embedding.IsConfigured())
	assert.False(t, s.LLM.IsConfigured())
	assert.Equal(t, DefaultMaxTokens, s.LLM.MaxTokens)
	assert.Equal(t, StorageSQLite, s.Storage.Backend)
	assert.Equal(t, []string{"*"}, s.Server.AllowedOrigins)
}

func TestStorageBackend_IsValid(t *testing.T) {
	for _, b := range []StorageBackend{StorageSQLite, StorageFile, StorageBolt, StorageMemory} {
		assert.True(t, b.IsValid(), b)
	}
	assert.False(t, StorageBackend("postgres").IsValid())
}

func TestStorageSettings_Path(t *testing.T) {
	s := StorageSettings{DataDir: "/var/lib/docmind"}
	assert.Equal(t, filepath.Join("/var/lib/docmind", "docmind.db"), s.Path("docmind.db"))
}
