package creds

import (
	"sync"

	"github.com/dkravtsov/shelfmark/internal/common"
)

// MemoryStore keeps the pair in process memory. Credentials are gone when
// the process exits.
type MemoryStore struct {
	mu   sync.Mutex
	pair Pair
	set  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Pair returns the stored pair, or common.ErrorNotFound if nothing was saved.
func (s *MemoryStore) Pair() (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Pair{}, common.ErrorNotFound
	}
	return s.pair, nil
}

func (s *MemoryStore) Save(p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = p
	s.set = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	s.set = false
	return nil
}
