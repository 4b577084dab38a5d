package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// WalletActivityStore is an in-memory implementation of storage.WalletActivityStore.
type WalletActivityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletActivity // keyed by composite key
}

// NewWalletActivityStore creates a new in-memory wallet activity store.
func NewWalletActivityStore() *WalletActivityStore {
	return &WalletActivityStore{
		data: make(map[string]*domain.WalletActivity),
	}
}

func activityKey(a *domain.WalletActivity) string {
	return fmt.Sprintf("%s|%s|%s|%s", a.TxHash, a.WalletAddress, a.TokenAddress, a.Action)
}

// Insert writes an activity row. Re-inserting the same natural key returns
// ErrDuplicateKey; the event path uses that as its redelivery gate.
func (s *WalletActivityStore) Insert(_ context.Context, a *domain.WalletActivity) error {
	if a == nil || a.TxHash == "" || a.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	key := activityKey(a)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	actCopy := *a
	s.data[key] = &actCopy
	return nil
}

// GetByWallet retrieves activity for a wallet ordered by timestamp DESC,
// at most limit rows. limit <= 0 means no limit.
func (s *WalletActivityStore) GetByWallet(_ context.Context, walletAddress string, limit int) ([]*domain.WalletActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WalletActivity
	for _, a := range s.data {
		if a.WalletAddress == walletAddress {
			actCopy := *a
			result = append(result, &actCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].TxHash < result[j].TxHash
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

var _ storage.WalletActivityStore = (*WalletActivityStore)(nil)
