package store

import (
	"sync"

	"github.com/i474232898/emissions-explorer/internal/indicators"
)

// MemoryStore is a concurrency-safe in-memory implementation of indicators.Store,
// keyed by path. Useful where touching the filesystem is not wanted.
type MemoryStore struct {
	mu sync.RWMutex

	// key: cache path
	data  map[string]*indicators.Dataset
	saves int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*indicators.Dataset),
	}
}

// TryLoad returns the dataset saved under path, if any.
func (s *MemoryStore) TryLoad(path string) (*indicators.Dataset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.data[path]
	return ds, ok, nil
}

// Save stores ds under path, replacing any previous dataset.
func (s *MemoryStore) Save(path string, ds *indicators.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[path] = ds
	s.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.saves
}
