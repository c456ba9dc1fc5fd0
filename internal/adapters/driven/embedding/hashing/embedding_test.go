package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return sum
}

func TestNewEmbeddingService_DefaultDimensions(t *testing.T) {
	assert.Equal(t, DefaultDimensions, NewEmbeddingService(0).Dimensions())
	assert.Equal(t, 32, NewEmbeddingService(32).Dimensions())
	assert.Equal(t, ModelName, NewEmbeddingService(0).ModelName())
}

func TestEmbeddingService_Embed_NormalisedAndDeterministic(t *testing.T) {
	svc := NewEmbeddingService(64)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "The quick brown fox")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "the QUICK, brown fox!")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, norm(a), 1e-5)
	assert.Equal(t, a, b, "case and punctuation are ignored")
}

func TestEmbeddingService_Embed_Empty(t *testing.T) {
	vec, err := NewEmbeddingService(8).Embed(context.Background(), "  ")

	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbeddingService_Embed_SimilarTextsCloser(t *testing.T) {
	svc := NewEmbeddingService(256)
	ctx := context.Background()

	query, _ := svc.Embed(ctx, "lazy dog")
	near, _ := svc.Embed(ctx, "the lazy dog sleeps")
	far, _ := svc.Embed(ctx, "quantum chromodynamics lecture")

	assert.Less(t, distance(query, near), distance(query, far))
}

func TestEmbeddingService_Embed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEmbeddingService(8).Embed(ctx, "text")

	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(16)

	out, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "three"})

	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
