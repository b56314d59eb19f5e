package store

import (
	"context"
	"sync"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
)

// MemoryStore keeps compositions in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*record)}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, f *nglyph.File) (string, error) {
	r, err := newRecord(f)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.records[r.ID] = r
	s.mu.Unlock()
	return r.ID, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*nglyph.File, error) {
	if err := errors.ValidateCompositionID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return r.file()
}

// Len returns the number of stored compositions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close does nothing.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
