package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// TokenHolderStore is an in-memory implementation of storage.TokenHolderStore.
type TokenHolderStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TokenHolder // keyed by (token, wallet)
}

// NewTokenHolderStore creates a new in-memory holder store.
func NewTokenHolderStore() *TokenHolderStore {
	return &TokenHolderStore{
		data: make(map[string]*domain.TokenHolder),
	}
}

func holderKey(tokenAddress, walletAddress string) string {
	return fmt.Sprintf("%s|%s", tokenAddress, walletAddress)
}

// Upsert inserts or replaces a holder row keyed by (token, wallet).
func (s *TokenHolderStore) Upsert(_ context.Context, h *domain.TokenHolder) error {
	if h == nil || h.TokenAddress == "" || h.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	holderCopy := *h
	s.data[holderKey(h.TokenAddress, h.WalletAddress)] = &holderCopy
	return nil
}

// Get retrieves one holder row. Returns ErrNotFound if not exists.
func (s *TokenHolderStore) Get(_ context.Context, tokenAddress, walletAddress string) (*domain.TokenHolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.data[holderKey(tokenAddress, walletAddress)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	holderCopy := *h
	return &holderCopy, nil
}

// GetByToken retrieves all holder rows for a token, ordered by wallet ASC.
func (s *TokenHolderStore) GetByToken(_ context.Context, tokenAddress string) ([]*domain.TokenHolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TokenHolder
	for _, h := range s.data {
		if h.TokenAddress == tokenAddress {
			holderCopy := *h
			result = append(result, &holderCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].WalletAddress < result[j].WalletAddress
	})

	return result, nil
}

// GetByWallet retrieves all holder rows for a wallet across tokens,
// ordered by token ASC.
func (s *TokenHolderStore) GetByWallet(_ context.Context, walletAddress string) ([]*domain.TokenHolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TokenHolder
	for _, h := range s.data {
		if h.WalletAddress == walletAddress {
			holderCopy := *h
			result = append(result, &holderCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TokenAddress < result[j].TokenAddress
	})

	return result, nil
}

var _ storage.TokenHolderStore = (*TokenHolderStore)(nil)
