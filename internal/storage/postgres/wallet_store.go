package postgres

import (
	"context"
	"fmt"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Upsert inserts or replaces a wallet row keyed by address.
func (s *WalletStore) Upsert(ctx context.Context, w *domain.Wallet) error {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO wallets (
			address, label, token_count, estimated_value_usd, last_activity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (address) DO UPDATE SET
			label = EXCLUDED.label,
			token_count = EXCLUDED.token_count,
			estimated_value_usd = EXCLUDED.estimated_value_usd,
			last_activity = EXCLUDED.last_activity,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		w.Address, w.Label, w.TokenCount, w.EstimatedValueUSD, w.LastActivity, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	}
	return nil
}

// GetByAddress retrieves a wallet.
func (s *WalletStore) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	query := `
		SELECT address, label, token_count, estimated_value_usd, last_activity, created_at, updated_at
		FROM wallets
		WHERE address = $1
	`

	var w domain.Wallet
	err := s.pool.QueryRow(ctx, query, address).Scan(
		&w.Address, &w.Label, &w.TokenCount, &w.EstimatedValueUSD, &w.LastActivity, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return &w, nil
}

// ListAddresses returns all known wallet addresses.
func (s *WalletStore) ListAddresses(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT address FROM wallets ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("list wallet addresses: %w", err)
	}
	defer rows.Close()

	var addrs []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan wallet address: %w", err)
		}
		addrs = append(addrs, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet addresses: %w", err)
	}
	return addrs, nil
}
