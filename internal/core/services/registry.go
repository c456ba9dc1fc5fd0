package services

import (
	"fmt"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// Registry holds the registered documents in insertion order.
// It is not safe for concurrent use; the Engine guards it.
type Registry struct {
	order []string
	docs  map[string]domain.Document
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]domain.Document)}
}

// NewRegistryFrom creates a registry holding docs in the given order.
func NewRegistryFrom(docs []domain.Document) (*Registry, error) {
	r := NewRegistry()
	for _, d := range docs {
		if err := r.Record(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Record adds a document. Returns domain.ErrAlreadyExists for a known ID.
func (r *Registry) Record(doc domain.Document) error {
	if _, ok := r.docs[doc.ID]; ok {
		return fmt.Errorf("%w: document %s", domain.ErrAlreadyExists, doc.ID)
	}
	r.order = append(r.order, doc.ID)
	r.docs[doc.ID] = doc
	return nil
}

// Get returns the document with the given ID.
func (r *Registry) Get(id string) (domain.Document, bool) {
	doc, ok := r.docs[id]
	return doc, ok
}

// Remove deletes a document. Returns false if it was not registered.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.docs[id]; !ok {
		return false
	}
	delete(r.docs, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns every document in insertion order.
func (r *Registry) List() []domain.Document {
	out := make([]domain.Document, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.docs[id])
	}
	return out
}

// Len returns the number of registered documents.
func (r *Registry) Len() int {
	return len(r.order)
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		order: append([]string(nil), r.order...),
		docs:  make(map[string]domain.Document, len(r.docs)),
	}
	for k, v := range r.docs {
		c.docs[k] = v
	}
	return c
}
