package flat

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an exact L2 index over fixed-dimension vectors.
// It is not safe for concurrent mutation.
type Index struct {
	dim  int
	data []float32
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: vector dimension must be positive, got %d", domain.ErrConfiguration, dimension)
	}
	return &Index{dim: dimension}, nil
}

// Factory adapts New to driven.VectorIndexFactory.
func Factory(dimension int) (driven.VectorIndex, error) {
	return New(dimension)
}

// FromVectors builds an index holding vectors in order.
func FromVectors(dimension int, vectors [][]float32) (*Index, error) {
	idx, err := New(dimension)
	if err != nil {
		return nil, err
	}
	idx.data = make([]float32, 0, len(vectors)*dimension)
	for _, v := range vectors {
		if err := idx.Append(v); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Dimension returns the vector length.
func (i *Index) Dimension() int {
	return i.dim
}

// Len returns the number of stored vectors.
func (i *Index) Len() int {
	return len(i.data) / i.dim
}

// Append stores vector at position Len().
func (i *Index) Append(vector []float32) error {
	if len(vector) != i.dim {
		return fmt.Errorf("%w: vector has dimension %d, index expects %d", domain.ErrIndexIntegrity, len(vector), i.dim)
	}
	i.data = append(i.data, vector...)
	return nil
}

// Search returns up to k nearest vectors by squared L2 distance.
func (i *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != i.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d", domain.ErrIndexIntegrity, len(query), i.dim)
	}
	n := i.Len()
	if n == 0 || k <= 0 {
		return []driven.VectorHit{}, nil
	}

	hits := make([]driven.VectorHit, n)
	for pos := range n {
		hits[pos] = driven.VectorHit{Position: pos, Distance: squaredL2(query, i.row(pos))}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Position < hits[b].Position
	})

	return hits[:min(k, n)], nil
}

// Reconstruct returns a copy of the vector at position.
func (i *Index) Reconstruct(position int) ([]float32, error) {
	if position < 0 || position >= i.Len() {
		return nil, fmt.Errorf("%w: position %d out of range [0, %d)", domain.ErrIndexIntegrity, position, i.Len())
	}
	return append([]float32(nil), i.row(position)...), nil
}

// Rebuild returns a new index with the vectors at retained, renumbered from zero.
func (i *Index) Rebuild(retained []int) (driven.VectorIndex, error) {
	out := &Index{dim: i.dim, data: make([]float32, 0, len(retained)*i.dim)}
	n := i.Len()
	for _, pos := range retained {
		if pos < 0 || pos >= n {
			return nil, fmt.Errorf("%w: retained position %d out of range [0, %d)", domain.ErrIndexIntegrity, pos, n)
		}
		out.data = append(out.data, i.row(pos)...)
	}
	return out, nil
}

// Vectors returns a copy of every stored vector in position order.
func (i *Index) Vectors() [][]float32 {
	n := i.Len()
	out := make([][]float32, n)
	for pos := range n {
		out[pos] = append([]float32(nil), i.row(pos)...)
	}
	return out
}

func (i *Index) row(pos int) []float32 {
	return i.data[pos*i.dim : (pos+1)*i.dim]
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for j := range a {
		d := a[j] - b[j]
		sum += d * d
	}
	return sum
}
