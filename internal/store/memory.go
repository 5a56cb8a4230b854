package store

import (
	"fmt"
	"sync"

	"intake-go/internal/model"
	"intake-go/internal/tracker"
)

// MemoryStore keeps documents in an ordered slice with an ID index.
// It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  []*model.Document
	index map[string]int // id -> position in docs
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index: make(map[string]int),
	}
}

func (m *MemoryStore) Insert(doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.index[doc.ID]; ok {
		return fmt.Errorf("%w: %s", tracker.ErrDuplicateID, doc.ID)
	}
	m.index[doc.ID] = len(m.docs)
	m.docs = append(m.docs, doc.Clone())
	return nil
}

func (m *MemoryStore) Get(id string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return nil, nil // Not found
	}
	return m.docs[i].Clone(), nil
}

func (m *MemoryStore) Update(doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[doc.ID]
	if !ok {
		return fmt.Errorf("%w: %s", tracker.ErrNotFound, doc.ID)
	}
	m.docs[i] = doc.Clone()
	return nil
}

func (m *MemoryStore) List() ([]*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Document, len(m.docs))
	for i, doc := range m.docs {
		out[i] = doc.Clone()
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// Compile-time check that MemoryStore implements tracker.Store interface
var _ tracker.Store = (*MemoryStore)(nil)
