package memory

import (
	"context"
	"sync"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// PairStore is an in-memory implementation of storage.PairStore.
type PairStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Pair // keyed by pair address
}

// NewPairStore creates a new in-memory pair store.
func NewPairStore() *PairStore {
	return &PairStore{
		data: make(map[string]*domain.Pair),
	}
}

// Upsert inserts or fully replaces a pair row.
func (s *PairStore) Upsert(_ context.Context, p *domain.Pair) error {
	if p == nil || p.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pairCopy := *p
	s.data[p.Address] = &pairCopy
	return nil
}

// GetByAddress retrieves a pair by address. Returns ErrNotFound if not exists.
func (s *PairStore) GetByAddress(_ context.Context, address string) (*domain.Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	pairCopy := *p
	return &pairCopy, nil
}

var _ storage.PairStore = (*PairStore)(nil)
