package postgres

import (
	"context"
	"fmt"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// LpLockStore implements storage.LpLockStore using PostgreSQL.
type LpLockStore struct {
	pool *Pool
}

// NewLpLockStore creates a new LpLockStore.
func NewLpLockStore(pool *Pool) *LpLockStore {
	return &LpLockStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LpLockStore = (*LpLockStore)(nil)

// Upsert inserts or replaces a lock keyed by (token, pair, lock contract).
func (s *LpLockStore) Upsert(ctx context.Context, l *domain.LpLock) error {
	if l == nil || l.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO lp_locks (
			token_address, pair_address, lock_contract, lock_contract_name,
			locked_amount, locked_percent, lock_date, unlock_date,
			tx_hash, block_number, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (token_address, pair_address, lock_contract) DO UPDATE SET
			lock_contract_name = EXCLUDED.lock_contract_name,
			locked_amount = EXCLUDED.locked_amount,
			locked_percent = EXCLUDED.locked_percent,
			lock_date = EXCLUDED.lock_date,
			unlock_date = EXCLUDED.unlock_date,
			tx_hash = EXCLUDED.tx_hash,
			block_number = EXCLUDED.block_number,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		l.TokenAddress, l.PairAddress, l.LockContract, l.LockContractName,
		l.LockedAmount, l.LockedPercent, l.LockDate, l.UnlockDate,
		l.TxHash, l.BlockNumber, l.IsActive, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert lp lock: %w", err)
	}
	return nil
}

// GetByToken retrieves all lock rows for a token, active and inactive.
func (s *LpLockStore) GetByToken(ctx context.Context, tokenAddress string) ([]*domain.LpLock, error) {
	query := `
		SELECT token_address, pair_address, lock_contract, lock_contract_name,
			locked_amount, locked_percent, lock_date, unlock_date,
			tx_hash, block_number, is_active, created_at, updated_at
		FROM lp_locks
		WHERE token_address = $1
		ORDER BY lock_date ASC, lock_contract ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("get lp locks by token: %w", err)
	}
	defer rows.Close()

	var locks []*domain.LpLock
	for rows.Next() {
		var l domain.LpLock
		err := rows.Scan(
			&l.TokenAddress, &l.PairAddress, &l.LockContract, &l.LockContractName,
			&l.LockedAmount, &l.LockedPercent, &l.LockDate, &l.UnlockDate,
			&l.TxHash, &l.BlockNumber, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lp lock row: %w", err)
		}
		locks = append(locks, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lp lock rows: %w", err)
	}
	return locks, nil
}

// Deactivate clears the active flag on a lock.
func (s *LpLockStore) Deactivate(ctx context.Context, tokenAddress, pairAddress, lockContract string) error {
	query := `
		UPDATE lp_locks
		SET is_active = FALSE, updated_at = NOW()
		WHERE token_address = $1 AND pair_address = $2 AND lock_contract = $3
	`

	tag, err := s.pool.Exec(ctx, query, tokenAddress, pairAddress, lockContract)
	if err != nil {
		return fmt.Errorf("deactivate lp lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
