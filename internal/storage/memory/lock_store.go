package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// LpLockStore is an in-memory implementation of storage.LpLockStore.
type LpLockStore struct {
	mu   sync.RWMutex
	data map[string]*domain.LpLock // keyed by composite key
}

// NewLpLockStore creates a new in-memory lock store.
func NewLpLockStore() *LpLockStore {
	return &LpLockStore{
		data: make(map[string]*domain.LpLock),
	}
}

func lockKey(tokenAddress, pairAddress, lockContract string) string {
	return fmt.Sprintf("%s|%s|%s", tokenAddress, pairAddress, lockContract)
}

// Upsert inserts or replaces a lock keyed by (token, pair, lock contract).
func (s *LpLockStore) Upsert(_ context.Context, l *domain.LpLock) error {
	if l == nil || l.TokenAddress == "" || l.LockContract == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lockCopy := *l
	s.data[lockKey(l.TokenAddress, l.PairAddress, l.LockContract)] = &lockCopy
	return nil
}

// GetByToken retrieves all lock rows for a token, active and inactive,
// ordered by unlock date ASC.
func (s *LpLockStore) GetByToken(_ context.Context, tokenAddress string) ([]*domain.LpLock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LpLock
	for _, l := range s.data {
		if l.TokenAddress == tokenAddress {
			lockCopy := *l
			result = append(result, &lockCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].UnlockDate.Equal(result[j].UnlockDate) {
			return result[i].UnlockDate.Before(result[j].UnlockDate)
		}
		return result[i].LockContract < result[j].LockContract
	})

	return result, nil
}

// Deactivate clears the active flag on a lock.
func (s *LpLockStore) Deactivate(_ context.Context, tokenAddress, pairAddress, lockContract string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.data[lockKey(tokenAddress, pairAddress, lockContract)]
	if !exists {
		return storage.ErrNotFound
	}

	l.IsActive = false
	return nil
}

var _ storage.LpLockStore = (*LpLockStore)(nil)
