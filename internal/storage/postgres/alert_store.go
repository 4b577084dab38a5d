package postgres

import (
	"context"
	"fmt"
	"time"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// Insert appends a new alert and fills in its assigned ID.
func (s *AlertStore) Insert(ctx context.Context, a *domain.AlertEvent) error {
	if a == nil || a.AlertType == "" {
		return storage.ErrInvalidInput
	}

	metadata, err := a.Metadata.MarshalBoundary()
	if err != nil {
		return fmt.Errorf("marshal alert metadata: %w", err)
	}

	query := `
		INSERT INTO alert_events (
			created_at, alert_type, token_address, token_symbol, wallet_address,
			title, message, bee_score, amount_usd, change_percent, metadata,
			dedup_key, processed, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	err = s.pool.QueryRow(ctx, query,
		a.CreatedAt, a.AlertType, a.TokenAddress, a.TokenSymbol, a.WalletAddress,
		a.Title, a.Message, a.BeeScore, a.AmountUSD, a.ChangePercent, metadata,
		a.DedupKey, a.Processed, a.ProcessedAt,
	).Scan(&a.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// GetRecent retrieves alerts created at or after the given instant, ordered
// by created_at DESC.
func (s *AlertStore) GetRecent(ctx context.Context, since time.Time) ([]*domain.AlertEvent, error) {
	query := `
		SELECT id, created_at, alert_type, token_address, token_symbol, wallet_address,
			title, message, bee_score, amount_usd, change_percent, metadata,
			dedup_key, processed, processed_at
		FROM alert_events
		WHERE created_at >= $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("get recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.AlertEvent
	for rows.Next() {
		var a domain.AlertEvent
		var metadata []byte
		err := rows.Scan(
			&a.ID, &a.CreatedAt, &a.AlertType, &a.TokenAddress, &a.TokenSymbol, &a.WalletAddress,
			&a.Title, &a.Message, &a.BeeScore, &a.AmountUSD, &a.ChangePercent, &metadata,
			&a.DedupKey, &a.Processed, &a.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		if err := a.Metadata.UnmarshalBoundary(metadata); err != nil {
			return nil, fmt.Errorf("unmarshal alert metadata: %w", err)
		}
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}
	return alerts, nil
}
