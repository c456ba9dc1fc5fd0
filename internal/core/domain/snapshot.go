package domain

import "fmt"

// Snapshot is the persisted state of the retrieval engine: the vectors,
// the chunk record paired with each vector, and the document registry.
// The three parts are always written and loaded together.
type Snapshot struct {
	// Dimension is the length of every vector. Zero for an empty snapshot
	// whose dimension has not been fixed yet.
	Dimension int

	// Vectors holds one embedding per chunk, in index order.
	Vectors [][]float32

	// Chunks holds the chunk records parallel to Vectors.
	Chunks []Chunk

	// Documents holds the registry in insertion order.
	Documents []Document
}

// IsEmpty reports whether the snapshot holds no documents and no vectors.
func (s *Snapshot) IsEmpty() bool {
	return len(s.Vectors) == 0 && len(s.Chunks) == 0 && len(s.Documents) == 0
}

// Validate checks that vectors, chunk records and registry describe the
// same chunks. It returns an error wrapping ErrIndexIntegrity otherwise.
func (s *Snapshot) Validate() error {
	if len(s.Vectors) != len(s.Chunks) {
		return fmt.Errorf("%w: %d vectors but %d chunk records", ErrIndexIntegrity, len(s.Vectors), len(s.Chunks))
	}
	if len(s.Vectors) > 0 && s.Dimension <= 0 {
		return fmt.Errorf("%w: %d vectors with no dimension", ErrIndexIntegrity, len(s.Vectors))
	}
	for i, v := range s.Vectors {
		if len(v) != s.Dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d", ErrIndexIntegrity, i, len(v), s.Dimension)
		}
	}

	counts := make(map[string]int, len(s.Documents))
	for _, doc := range s.Documents {
		if _, dup := counts[doc.ID]; dup {
			return fmt.Errorf("%w: duplicate document %s", ErrIndexIntegrity, doc.ID)
		}
		counts[doc.ID] = 0
	}
	for i, c := range s.Chunks {
		if _, ok := counts[c.DocumentID]; !ok {
			return fmt.Errorf("%w: chunk %d references unknown document %s", ErrIndexIntegrity, i, c.DocumentID)
		}
		counts[c.DocumentID]++
	}
	for _, doc := range s.Documents {
		if counts[doc.ID] != doc.ChunkCount {
			return fmt.Errorf("%w: document %s records %d chunks but %d are indexed",
				ErrIndexIntegrity, doc.ID, doc.ChunkCount, counts[doc.ID])
		}
	}
	return nil
}
