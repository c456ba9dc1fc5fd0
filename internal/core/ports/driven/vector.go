package driven

// VectorIndex is an exact nearest-neighbour store addressed by ordinal.
// Positions are assigned densely from zero in append order. The index is
// not safe for concurrent mutation; the retrieval engine serialises writers.
type VectorIndex interface {
	// Dimension returns the length every stored vector must have.
	Dimension() int

	// Len returns the number of stored vectors.
	Len() int

	// Append stores a vector at position Len().
	// A vector of the wrong length is rejected with domain.ErrIndexIntegrity.
	Append(vector []float32) error

	// Search returns up to k hits ordered by ascending squared L2 distance,
	// ties broken by ascending position. An empty index returns no hits.
	Search(query []float32, k int) ([]VectorHit, error)

	// Reconstruct returns a copy of the vector at position.
	Reconstruct(position int) ([]float32, error)

	// Rebuild returns a new index holding the vectors at the given positions,
	// in the given order, renumbered from zero. The receiver is unchanged.
	Rebuild(retained []int) (VectorIndex, error)
}

// VectorHit represents a nearest-neighbour search result.
type VectorHit struct {
	// Position is the ordinal of the matched vector.
	Position int

	// Distance is the squared L2 distance to the query.
	Distance float32
}

// VectorIndexFactory creates an empty index of the given dimension.
type VectorIndexFactory func(dimension int) (VectorIndex, error)
