// Package file stores snapshots as three files in a data directory: the
// binary vector index, the chunk records and the document registry.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/docmind/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// File names inside the data directory.
const (
	IndexFile     = "index.bin"
	ChunksFile    = "chunks.json"
	DocumentsFile = "documents.json"
)

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

// Store is a file-based snapshot store.
//
// Save writes all three files to temporary names before renaming any of
// them into place, so a failed write never leaves a partial set behind.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates a store in dataDir.
// If dataDir is empty, defaults to ~/.docmind/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docmind", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dir: dataDir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads the three snapshot files.
// Returns domain.ErrNotFound when none exist and an error wrapping
// domain.ErrIndexIntegrity when only some do or any fails to decode.
func (s *Store) Load(_ context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := []string{IndexFile, ChunksFile, DocumentsFile}
	contents := make(map[string][]byte, len(names))
	var missing []string
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		contents[name] = data
	}
	switch len(missing) {
	case 0:
	case len(names):
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: snapshot files missing: %v", domain.ErrIndexIntegrity, missing)
	}

	index, err := flat.Decode(contents[IndexFile])
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", IndexFile, err)
	}
	snap := &domain.Snapshot{
		Dimension: index.Dimension(),
		Vectors:   index.Vectors(),
	}
	if err := json.Unmarshal(contents[ChunksFile], &snap.Chunks); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", domain.ErrIndexIntegrity, ChunksFile, err)
	}
	if err := json.Unmarshal(contents[DocumentsFile], &snap.Documents); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", domain.ErrIndexIntegrity, DocumentsFile, err)
	}
	return snap, nil
}

// Save writes the snapshot.
func (s *Store) Save(_ context.Context, snap *domain.Snapshot) error {
	if len(snap.Vectors) != len(snap.Chunks) {
		return fmt.Errorf("%w: %d vectors but %d chunk records", domain.ErrIndexIntegrity, len(snap.Vectors), len(snap.Chunks))
	}

	index, err := flat.FromVectors(snap.Dimension, snap.Vectors)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	indexData, err := index.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	chunks := snap.Chunks
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	chunkData, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding chunks: %w", err)
	}
	docs := snap.Documents
	if docs == nil {
		docs = []domain.Document{}
	}
	docData, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files := []struct {
		name string
		data []byte
	}{
		{IndexFile, indexData},
		{ChunksFile, chunkData},
		{DocumentsFile, docData},
	}

	temps := make([]string, 0, len(files))
	defer func() {
		for _, tmp := range temps {
			_ = os.Remove(tmp)
		}
	}()
	for _, f := range files {
		tmp, err := writeTemp(s.dir, f.name, f.data)
		if err != nil {
			return err
		}
		temps = append(temps, tmp)
	}
	for i, f := range files {
		if err := os.Rename(temps[i], filepath.Join(s.dir, f.name)); err != nil {
			return fmt.Errorf("replacing %s: %w", f.name, err)
		}
	}
	temps = temps[:0]
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func writeTemp(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return f.Name(), nil
}
