package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryIndex is the in-process index driver, used for tests and local runs.
type MemoryIndex struct {
	mu      sync.RWMutex
	indices map[string]map[string]json.RawMessage
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{indices: make(map[string]map[string]json.RawMessage)}
}

func (m *MemoryIndex) CreateIndex(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.indices[name]; !ok {
		m.indices[name] = make(map[string]json.RawMessage)
	}
	return nil
}

func (m *MemoryIndex) DeleteIndex(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.indices, name)
	return nil
}

func (m *MemoryIndex) Upsert(ctx context.Context, name, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search.MemoryIndex.Upsert: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.indices[name]
	if !ok {
		idx = make(map[string]json.RawMessage)
		m.indices[name] = idx
	}
	idx[id] = data
	return nil
}

func (m *MemoryIndex) BulkUpsert(ctx context.Context, name string, docs []Document) error {
	for _, d := range docs {
		if err := m.Upsert(ctx, name, d.Id, d.Doc); err != nil {
			return fmt.Errorf("search.MemoryIndex.BulkUpsert: %w", err)
		}
	}
	return nil
}

func (m *MemoryIndex) Close() error {
	return nil
}

// Get is a test helper returning the raw stored projection.
func (m *MemoryIndex) Get(name, id string) (json.RawMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.indices[name]
	if !ok {
		return nil, false
	}
	doc, ok := idx[id]
	return doc, ok
}

// Count is a test helper returning the number of documents in an index.
func (m *MemoryIndex) Count(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.indices[name])
}
