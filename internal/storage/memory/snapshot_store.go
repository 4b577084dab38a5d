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

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceSnapshot // keyed by (token, timestamp)
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string]*domain.PriceSnapshot),
	}
}

func snapshotKey(tokenAddress string, ts time.Time) string {
	return fmt.Sprintf("%s|%d", tokenAddress, ts.Unix())
}

// Insert writes a snapshot unless the bucket already exists. Re-inserting an
// existing bucket is a silent no-op: snapshots are immutable once written.
func (s *SnapshotStore) Insert(_ context.Context, snap *domain.PriceSnapshot) error {
	if snap == nil || snap.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	key := snapshotKey(snap.TokenAddress, snap.Timestamp)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return nil
	}

	snapCopy := *snap
	s.data[key] = &snapCopy
	return nil
}

// GetByToken retrieves snapshots for a token within [start, end], ordered by
// timestamp ASC.
func (s *SnapshotStore) GetByToken(_ context.Context, tokenAddress string, start, end time.Time) ([]*domain.PriceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceSnapshot
	for _, snap := range s.data {
		if snap.TokenAddress != tokenAddress {
			continue
		}
		if snap.Timestamp.Before(start) || snap.Timestamp.After(end) {
			continue
		}
		snapCopy := *snap
		result = append(result, &snapCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
