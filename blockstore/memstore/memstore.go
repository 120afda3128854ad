// Package memstore implements blockstore.Store as a plain in-memory
// map, for tests and single-process deployments that don't need
// durability across restarts.
package memstore

import (
	"sync"

	"github.com/bitmark-inc/peerlog/entry"
)

// Store - an in-memory blockstore.Store
type Store struct {
	mu   sync.RWMutex
	data map[entry.Hash][]byte
}

// New - an empty Store
func New() *Store {
	return &Store{data: make(map[entry.Hash][]byte)}
}

// Put - store data under hash, overwriting any prior value
func (s *Store) Put(hash entry.Hash, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buffer := make([]byte, len(data))
	copy(buffer, data)
	s.data[hash] = buffer
}

// Get - fetch the bytes stored under hash
func (s *Store) Get(hash entry.Hash) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[hash]
	return data, ok
}

// Has - true if hash is present
func (s *Store) Has(hash entry.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[hash]
	return ok
}

// Remove - drop hash, if present
func (s *Store) Remove(hash entry.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, hash)
}

// Len - number of stored entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
