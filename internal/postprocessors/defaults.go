package postprocessors

import (
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in chunkers with the registry.
// Call this during application initialisation to enable standard chunkers.
func RegisterDefaults(r *Registry) {
	r.Register(chunker.Name, buildWordChunker)
}

// NewDefaultRegistry returns a registry with the built-in chunkers registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// ChunkerConfig converts chunking settings into builder config.
func ChunkerConfig(s domain.ChunkingSettings) map[string]any {
	return map[string]any{
		"chunk_size": s.Size,
		"overlap":    s.Overlap,
	}
}

// buildWordChunker creates a word-window chunker from generic config.
// Supported config keys:
//   - chunk_size (int): Words per chunk (default: 500)
//   - overlap (int): Overlapping words between chunks (default: 50)
func buildWordChunker(cfg map[string]any) (driven.Chunker, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...)
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/YAML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
