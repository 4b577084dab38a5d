package memory

import (
	"context"
	"sort"
	"sync"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	byAddr map[string]*domain.Token // keyed by token address
	byPair map[string]string        // pair address -> token address
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byAddr: make(map[string]*domain.Token),
		byPair: make(map[string]string),
	}
}

// Upsert inserts or fully replaces a token row.
func (s *TokenStore) Upsert(_ context.Context, t *domain.Token) error {
	if t == nil || t.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, exists := s.byAddr[t.Address]; exists && prev.PairAddress != t.PairAddress {
		delete(s.byPair, prev.PairAddress)
	}

	tokenCopy := *t
	s.byAddr[t.Address] = &tokenCopy
	if t.PairAddress != "" {
		s.byPair[t.PairAddress] = t.Address
	}
	return nil
}

// GetByAddress retrieves a token by contract address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByAddress(_ context.Context, address string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.byAddr[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tokenCopy := *t
	return &tokenCopy, nil
}

// GetByPairAddress retrieves the token tracked through the given pair.
func (s *TokenStore) GetByPairAddress(_ context.Context, pairAddress string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addr, exists := s.byPair[pairAddress]
	if !exists {
		return nil, storage.ErrNotFound
	}

	t, exists := s.byAddr[addr]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tokenCopy := *t
	return &tokenCopy, nil
}

// ListAddresses returns all tracked token addresses, sorted.
func (s *TokenStore) ListAddresses(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs := make([]string, 0, len(s.byAddr))
	for addr := range s.byAddr {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs, nil
}

var _ storage.TokenStore = (*TokenStore)(nil)
