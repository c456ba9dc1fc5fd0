package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/logger"
)

// EngineConfig holds the collaborators of an Engine.
type EngineConfig struct {
	// Chunker splits document text. Required.
	Chunker driven.Chunker

	// Embedder produces vectors. Required; its Dimensions fix the index dimension.
	Embedder driven.EmbeddingService

	// Store persists snapshots. Required.
	Store driven.SnapshotStore

	// NewIndex creates empty vector indexes. Required.
	NewIndex driven.VectorIndexFactory

	// Strict makes Load fail on a corrupt snapshot instead of starting empty.
	Strict bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// NewID returns a fresh document ID. Defaults to a random UUID.
	NewID func() string
}

// Engine is the chunk, embed, index and search core.
//
// Mutations (index batches and deletes) are serialised by writeMu and
// persist the full snapshot before returning. mu guards the in-memory
// state; searches hold it for reading. Embedding calls never run while
// mu is held.
type Engine struct {
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	store    driven.SnapshotStore
	newIndex driven.VectorIndexFactory
	strict   bool
	now      func() time.Time
	newID    func() string

	writeMu sync.Mutex

	mu       sync.RWMutex
	index    driven.VectorIndex
	chunks   []domain.Chunk
	registry *Registry
}

// NewEngine creates an Engine with empty state. Call Load to restore
// the persisted snapshot.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	switch {
	case cfg.Chunker == nil:
		return nil, fmt.Errorf("%w: engine requires a chunker", domain.ErrConfiguration)
	case cfg.Embedder == nil:
		return nil, fmt.Errorf("%w: engine requires an embedding service", domain.ErrEmbeddingUnavailable)
	case cfg.Store == nil:
		return nil, fmt.Errorf("%w: engine requires a snapshot store", domain.ErrConfiguration)
	case cfg.NewIndex == nil:
		return nil, fmt.Errorf("%w: engine requires a vector index factory", domain.ErrConfiguration)
	}

	e := &Engine{
		chunker:  cfg.Chunker,
		embedder: cfg.Embedder,
		store:    cfg.Store,
		newIndex: cfg.NewIndex,
		strict:   cfg.Strict,
		now:      cfg.Now,
		newID:    cfg.NewID,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}

	index, err := e.newIndex(e.embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("create vector index: %w", err)
	}
	e.index = index
	e.registry = NewRegistry()
	return e, nil
}

// Load restores the persisted snapshot.
//
// A missing snapshot leaves the engine empty. A snapshot that cannot be
// read, fails validation or has a different dimension from the embedder
// is logged and discarded, unless the engine is strict, in which case
// the error is returned and the engine stays empty.
func (e *Engine) Load(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	logger.Section("Snapshot Load")

	snap, err := e.store.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Info("No snapshot found, starting with an empty index")
		return nil
	}
	if err == nil {
		err = e.restore(snap)
	}
	if err != nil {
		if e.strict {
			return fmt.Errorf("load snapshot: %w", err)
		}
		logger.Error("Discarding unreadable snapshot, starting with an empty index: %v", err)
		return e.reset()
	}

	logger.Info("Loaded snapshot with %d documents and %d chunks", e.registry.Len(), len(e.chunks))
	return nil
}

func (e *Engine) restore(snap *domain.Snapshot) error {
	if snap.IsEmpty() {
		return nil
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	dim := e.embedder.Dimensions()
	if len(snap.Vectors) > 0 && snap.Dimension != dim {
		return fmt.Errorf("%w: snapshot dimension %d does not match embedder dimension %d",
			domain.ErrIndexIntegrity, snap.Dimension, dim)
	}

	index, err := e.newIndex(dim)
	if err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}
	for _, v := range snap.Vectors {
		if err := index.Append(v); err != nil {
			return err
		}
	}
	registry, err := NewRegistryFrom(snap.Documents)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexIntegrity, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.index = index
	e.chunks = append([]domain.Chunk(nil), snap.Chunks...)
	e.registry = registry
	return nil
}

func (e *Engine) reset() error {
	index, err := e.newIndex(e.embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.index = index
	e.chunks = nil
	e.registry = NewRegistry()
	return nil
}

// Index chunks, embeds and indexes documents in order, then persists.
//
// Each document is embedded in full before any of its chunks are
// appended, so a failed embedding leaves no trace of that document.
// Documents committed before a failure stay indexed, are persisted, and
// are reported in the returned result alongside the error.
func (e *Engine) Index(ctx context.Context, docs []domain.DocumentInput) (*domain.IndexResult, error) {
	result := &domain.IndexResult{DocumentIDs: make([]string, 0, len(docs))}
	if len(docs) == 0 {
		return result, nil
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	logger.Section("Indexing")
	logger.Debug("Batch of %d documents", len(docs))

	var batchErr error
	for i, in := range docs {
		title := in.ResolvedTitle()
		texts := e.chunker.Chunk(in.Content)
		logger.Debug("Document %d %q: %d chunks", i, title, len(texts))

		vectors, err := e.embedAll(ctx, texts)
		if err != nil {
			batchErr = fmt.Errorf("%w: document %d %q: %w", domain.ErrIndexingFailed, i, title, err)
			break
		}

		doc := domain.Document{
			ID:         e.newID(),
			Title:      title,
			ChunkCount: len(texts),
			CreatedAt:  e.now().UTC(),
		}
		if err := e.commit(doc, texts, vectors); err != nil {
			// Integrity failures abort without persisting anything.
			return result, err
		}

		result.DocumentIDs = append(result.DocumentIDs, doc.ID)
		result.ChunksCreated += len(texts)
	}

	if len(result.DocumentIDs) > 0 {
		if err := e.persist(ctx); err != nil {
			return result, errors.Join(batchErr, err)
		}
	}
	if batchErr != nil {
		logger.Warn("Indexing stopped after %d of %d documents: %v", len(result.DocumentIDs), len(docs), batchErr)
		return result, batchErr
	}

	logger.Info("Indexed %d documents, %d chunks", len(result.DocumentIDs), result.ChunksCreated)
	return result, nil
}

// embedAll embeds every chunk text without holding the state lock.
func (e *Engine) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbeddingFailed, len(vectors), len(texts))
	}
	return vectors, nil
}

// commit appends one document's vectors, chunk records and registry entry
// as a single step under the state lock.
func (e *Engine) commit(doc domain.Document, texts []string, vectors [][]float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dim := e.index.Dimension()
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: chunk %d of %q has dimension %d, index expects %d",
				domain.ErrIndexIntegrity, i, doc.Title, len(v), dim)
		}
	}
	if _, exists := e.registry.Get(doc.ID); exists {
		return fmt.Errorf("%w: document %s already registered", domain.ErrIndexIntegrity, doc.ID)
	}

	for i, v := range vectors {
		if err := e.index.Append(v); err != nil {
			return err
		}
		e.chunks = append(e.chunks, domain.Chunk{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Index:      i,
			Content:    texts[i],
		})
	}
	if err := e.registry.Record(doc); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexIntegrity, err)
	}
	return e.checkInvariant()
}

// checkInvariant requires mu to be held.
func (e *Engine) checkInvariant() error {
	if e.index.Len() != len(e.chunks) {
		return fmt.Errorf("%w: index holds %d vectors but %d chunk records",
			domain.ErrIndexIntegrity, e.index.Len(), len(e.chunks))
	}
	return nil
}

// Search returns up to topK chunks nearest to query, nearest first.
// An empty index returns no results without calling the embedder.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]domain.RankedChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RankedChunk{}, nil
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	e.mu.RLock()
	empty := e.index.Len() == 0
	e.mu.RUnlock()
	if empty {
		logger.Debug("Index is empty, returning no results")
		return []domain.RankedChunk{}, nil
	}

	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	hits, err := e.index.Search(vector, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]domain.RankedChunk, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(e.chunks) {
			return nil, fmt.Errorf("%w: hit position %d beyond %d chunk records",
				domain.ErrIndexIntegrity, hit.Position, len(e.chunks))
		}
		c := e.chunks[hit.Position]
		results = append(results, domain.RankedChunk{
			DocumentID: c.DocumentID,
			Title:      c.Title,
			Content:    c.Content,
			Score:      domain.Score(hit.Distance),
		})
	}
	logger.Debug("Search %q: %d hits", query, len(results))
	return results, nil
}

// Delete removes a document and every chunk that references it.
//
// The remaining vectors are copied into a fresh index in their original
// order, so deletion costs O(n) in the number of indexed chunks. The new
// state is persisted before it replaces the current one, so a failed
// write leaves both memory and storage unchanged.
func (e *Engine) Delete(ctx context.Context, documentID string) (bool, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	e.mu.RLock()
	doc, ok := e.registry.Get(documentID)
	if !ok {
		e.mu.RUnlock()
		return false, nil
	}

	retained := make([]int, 0, len(e.chunks))
	chunks := make([]domain.Chunk, 0, len(e.chunks))
	for i, c := range e.chunks {
		if c.DocumentID != documentID {
			retained = append(retained, i)
			chunks = append(chunks, c)
		}
	}
	// No indexed chunk references the document, so there is nothing to remove.
	if len(retained) == len(e.chunks) {
		e.mu.RUnlock()
		logger.Warn("Document %s has no indexed chunks (registry records %d); not deleting", documentID, doc.ChunkCount)
		return false, nil
	}

	index, err := e.index.Rebuild(retained)
	if err != nil {
		e.mu.RUnlock()
		return false, fmt.Errorf("rebuild index: %w", err)
	}
	registry := e.registry.Clone()
	registry.Remove(documentID)
	e.mu.RUnlock()

	if index.Len() != len(chunks) {
		return false, fmt.Errorf("%w: rebuilt index holds %d vectors but %d chunk records",
			domain.ErrIndexIntegrity, index.Len(), len(chunks))
	}

	snap, err := buildSnapshot(index, chunks, registry)
	if err != nil {
		return false, err
	}
	if err := e.store.Save(ctx, snap); err != nil {
		return false, fmt.Errorf("persist snapshot: %w", err)
	}

	e.mu.Lock()
	e.index = index
	e.chunks = chunks
	e.registry = registry
	e.mu.Unlock()

	logger.Info("Deleted document %s (%d chunks)", documentID, doc.ChunkCount)
	return true, nil
}

// List returns the registered documents in insertion order.
func (e *Engine) List() []domain.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.List()
}

// Stats returns document and chunk counts.
func (e *Engine) Stats() domain.IndexStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return domain.IndexStats{
		Documents: e.registry.Len(),
		Chunks:    len(e.chunks),
		Dimension: e.index.Dimension(),
	}
}

// persist writes the current state. Requires writeMu to be held.
func (e *Engine) persist(ctx context.Context) error {
	e.mu.RLock()
	snap, err := buildSnapshot(e.index, e.chunks, e.registry)
	e.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := e.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	logger.Debug("Persisted snapshot: %d documents, %d chunks", len(snap.Documents), len(snap.Chunks))
	return nil
}

func buildSnapshot(index driven.VectorIndex, chunks []domain.Chunk, registry *Registry) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		Dimension: index.Dimension(),
		Vectors:   make([][]float32, index.Len()),
		Chunks:    append([]domain.Chunk(nil), chunks...),
		Documents: registry.List(),
	}
	for i := range snap.Vectors {
		v, err := index.Reconstruct(i)
		if err != nil {
			return nil, err
		}
		snap.Vectors[i] = v
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}
