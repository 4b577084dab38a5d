package postgres

import (
	"context"
	"fmt"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// WalletActivityStore implements storage.WalletActivityStore using PostgreSQL.
type WalletActivityStore struct {
	pool *Pool
}

// NewWalletActivityStore creates a new WalletActivityStore.
func NewWalletActivityStore(pool *Pool) *WalletActivityStore {
	return &WalletActivityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletActivityStore = (*WalletActivityStore)(nil)

// Insert writes an activity row. Re-delivery of the same
// (tx, wallet, token, action) returns ErrDuplicateKey so the event path can
// treat it as its redelivery gate.
func (s *WalletActivityStore) Insert(ctx context.Context, a *domain.WalletActivity) error {
	if a == nil || a.TxHash == "" || a.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO wallet_activity (
			tx_hash, wallet_address, token_address, token_symbol, action,
			block_number, timestamp, amount_tokens, amount_usd, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		a.TxHash, a.WalletAddress, a.TokenAddress, a.TokenSymbol, a.Action,
		a.BlockNumber, a.Timestamp, a.AmountTokens, a.AmountUSD, a.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet activity: %w", err)
	}
	return nil
}

// GetByWallet retrieves activity for a wallet ordered by timestamp DESC,
// newest first, at most limit rows.
func (s *WalletActivityStore) GetByWallet(ctx context.Context, walletAddress string, limit int) ([]*domain.WalletActivity, error) {
	query := `
		SELECT tx_hash, wallet_address, token_address, token_symbol, action,
			block_number, timestamp, amount_tokens, amount_usd, created_at
		FROM wallet_activity
		WHERE wallet_address = $1
		ORDER BY timestamp DESC, tx_hash DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, walletAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("get activity by wallet: %w", err)
	}
	defer rows.Close()

	var acts []*domain.WalletActivity
	for rows.Next() {
		var a domain.WalletActivity
		err := rows.Scan(
			&a.TxHash, &a.WalletAddress, &a.TokenAddress, &a.TokenSymbol, &a.Action,
			&a.BlockNumber, &a.Timestamp, &a.AmountTokens, &a.AmountUSD, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		acts = append(acts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity rows: %w", err)
	}
	return acts, nil
}
