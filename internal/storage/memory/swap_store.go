package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// SwapStore is an in-memory implementation of storage.SwapStore.
type SwapStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Swap // keyed by composite key
}

// NewSwapStore creates a new in-memory swap store.
func NewSwapStore() *SwapStore {
	return &SwapStore{
		data: make(map[string]*domain.Swap),
	}
}

// swapKey generates a unique key for a swap.
func swapKey(txHash string, logIndex int) string {
	return fmt.Sprintf("%s|%d", txHash, logIndex)
}

// Insert adds a new swap. Returns ErrDuplicateKey if (tx_hash, log_index) exists.
func (s *SwapStore) Insert(_ context.Context, swap *domain.Swap) error {
	if swap == nil || swap.TxHash == "" || swap.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	key := swapKey(swap.TxHash, swap.LogIndex)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	swapCopy := *swap
	s.data[key] = &swapCopy
	return nil
}

// GetByToken retrieves swaps for a token with timestamp strictly after the
// given instant, ordered by timestamp ASC.
func (s *SwapStore) GetByToken(_ context.Context, tokenAddress string, after time.Time) ([]*domain.Swap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Swap
	for _, swap := range s.data {
		if swap.TokenAddress == tokenAddress && swap.Timestamp.After(after) {
			swapCopy := *swap
			result = append(result, &swapCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.Before(result[j].Timestamp)
		}
		if result[i].TxHash != result[j].TxHash {
			return result[i].TxHash < result[j].TxHash
		}
		return result[i].LogIndex < result[j].LogIndex
	})

	return result, nil
}

var _ storage.SwapStore = (*SwapStore)(nil)
