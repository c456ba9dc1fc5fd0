package driven

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// SnapshotStore persists the engine state as one unit.
// Implementations write atomically: a concurrent or later Load observes
// either the previous snapshot or the new one, never a mix.
type SnapshotStore interface {
	// Load returns the persisted snapshot.
	// Returns domain.ErrNotFound when nothing has been persisted yet.
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snapshot *domain.Snapshot) error

	// Close releases resources.
	Close() error
}
