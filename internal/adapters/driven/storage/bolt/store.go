// Package bolt provides a snapshot store backed by a bbolt database file.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/custodia-labs/docmind/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// DatabaseFile is the name of the database inside the data directory.
const DatabaseFile = "docmind.bolt"

var (
	bucketMeta   = []byte("meta")
	bucketDocs   = []byte("documents")
	bucketChunks = []byte("chunks")

	keyIndex = []byte("index")
)

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

// Store keeps the snapshot in three buckets. The vector index is one
// blob under meta; documents and chunks are JSON values keyed by their
// big-endian position so iteration returns them in order.
type Store struct {
	db   *bbolt.DB
	path string
}

// NewStore opens or creates the database in dataDir.
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

	path := filepath.Join(dataDir, DatabaseFile)
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketDocs, bucketChunks} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot. Returns domain.ErrNotFound if none was saved.
func (s *Store) Load(_ context.Context) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		blob := tx.Bucket(bucketMeta).Get(keyIndex)
		if blob == nil {
			return domain.ErrNotFound
		}
		index, err := flat.Decode(blob)
		if err != nil {
			return err
		}
		snap = &domain.Snapshot{
			Dimension: index.Dimension(),
			Vectors:   index.Vectors(),
		}

		err = tx.Bucket(bucketDocs).ForEach(func(_, v []byte) error {
			var doc domain.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("%w: decoding document: %w", domain.ErrIndexIntegrity, err)
			}
			snap.Documents = append(snap.Documents, doc)
			return nil
		})
		if err != nil {
			return err
		}

		return tx.Bucket(bucketChunks).ForEach(func(k, v []byte) error {
			if len(k) != 8 || binary.BigEndian.Uint64(k) != uint64(len(snap.Chunks)) {
				return fmt.Errorf("%w: unexpected chunk key %x at ordinal %d", domain.ErrIndexIntegrity, k, len(snap.Chunks))
			}
			var c domain.Chunk
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("%w: decoding chunk: %w", domain.ErrIndexIntegrity, err)
			}
			snap.Chunks = append(snap.Chunks, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Save replaces the snapshot in a single transaction.
func (s *Store) Save(_ context.Context, snap *domain.Snapshot) error {
	if len(snap.Vectors) != len(snap.Chunks) {
		return fmt.Errorf("%w: %d vectors but %d chunk records", domain.ErrIndexIntegrity, len(snap.Vectors), len(snap.Chunks))
	}
	index, err := flat.FromVectors(snap.Dimension, snap.Vectors)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	blob, err := index.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketDocs, bucketChunks} {
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("clearing %s: %w", name, err)
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return fmt.Errorf("creating %s: %w", name, err)
			}
		}

		docs := tx.Bucket(bucketDocs)
		for i, doc := range snap.Documents {
			data, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			if err := docs.Put(positionKey(i), data); err != nil {
				return fmt.Errorf("saving document %s: %w", doc.ID, err)
			}
		}

		chunks := tx.Bucket(bucketChunks)
		for i, c := range snap.Chunks {
			data, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := chunks.Put(positionKey(i), data); err != nil {
				return fmt.Errorf("saving chunk %d: %w", i, err)
			}
		}

		return tx.Bucket(bucketMeta).Put(keyIndex, blob)
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func positionKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}
