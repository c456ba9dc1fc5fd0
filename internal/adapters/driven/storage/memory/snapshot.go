package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps the last saved snapshot in memory.
type SnapshotStore struct {
	mu    sync.RWMutex
	snap  *domain.Snapshot
	saves int
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Load returns a copy of the last saved snapshot.
func (s *SnapshotStore) Load(_ context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, domain.ErrNotFound
	}
	return cloneSnapshot(s.snap), nil
}

// Save replaces the stored snapshot with a copy of snapshot.
func (s *SnapshotStore) Save(_ context.Context, snapshot *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = cloneSnapshot(snapshot)
	s.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (s *SnapshotStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close is a no-op.
func (s *SnapshotStore) Close() error {
	return nil
}

func cloneSnapshot(in *domain.Snapshot) *domain.Snapshot {
	out := &domain.Snapshot{
		Dimension: in.Dimension,
		Vectors:   make([][]float32, len(in.Vectors)),
		Chunks:    append([]domain.Chunk(nil), in.Chunks...),
		Documents: append([]domain.Document(nil), in.Documents...),
	}
	for i, v := range in.Vectors {
		out.Vectors[i] = append([]float32(nil), v...)
	}
	return out
}
