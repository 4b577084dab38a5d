package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore.
type AlertStore struct {
	mu     sync.RWMutex
	data   []*domain.AlertEvent
	nextID int64
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{nextID: 1}
}

// Insert appends a new alert and fills in its assigned ID.
func (s *AlertStore) Insert(_ context.Context, a *domain.AlertEvent) error {
	if a == nil || a.AlertType == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextID
	s.nextID++

	alertCopy := *a
	s.data = append(s.data, &alertCopy)
	return nil
}

// GetRecent retrieves alerts created at or after the given instant,
// ordered by created_at DESC.
func (s *AlertStore) GetRecent(_ context.Context, since time.Time) ([]*domain.AlertEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AlertEvent
	for _, a := range s.data {
		if !a.CreatedAt.Before(since) {
			alertCopy := *a
			result = append(result, &alertCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

var _ storage.AlertStore = (*AlertStore)(nil)
