package postgres

import (
	"context"
	"fmt"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// PairStore implements storage.PairStore using PostgreSQL.
type PairStore struct {
	pool *Pool
}

// NewPairStore creates a new PairStore.
func NewPairStore(pool *Pool) *PairStore {
	return &PairStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PairStore = (*PairStore)(nil)

// Upsert inserts or fully replaces a pair row keyed by address.
func (s *PairStore) Upsert(ctx context.Context, p *domain.Pair) error {
	if p == nil || p.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO pairs (
			address, token0_address, token1_address, factory_address,
			reserve0, reserve1, base_token_index, block_number, created_at, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (address) DO UPDATE SET
			token0_address = EXCLUDED.token0_address,
			token1_address = EXCLUDED.token1_address,
			factory_address = EXCLUDED.factory_address,
			reserve0 = EXCLUDED.reserve0,
			reserve1 = EXCLUDED.reserve1,
			base_token_index = EXCLUDED.base_token_index,
			block_number = EXCLUDED.block_number,
			created_at = EXCLUDED.created_at,
			last_updated = EXCLUDED.last_updated
	`

	_, err := s.pool.Exec(ctx, query,
		p.Address, p.Token0Address, p.Token1Address, p.FactoryAddress,
		p.Reserve0, p.Reserve1, p.BaseTokenIndex, p.BlockNumber, p.CreatedAt, p.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upsert pair: %w", err)
	}
	return nil
}

// GetByAddress retrieves a pair by address.
func (s *PairStore) GetByAddress(ctx context.Context, address string) (*domain.Pair, error) {
	query := `
		SELECT address, token0_address, token1_address, factory_address,
			reserve0, reserve1, base_token_index, block_number, created_at, last_updated
		FROM pairs
		WHERE address = $1
	`

	var p domain.Pair
	err := s.pool.QueryRow(ctx, query, address).Scan(
		&p.Address, &p.Token0Address, &p.Token1Address, &p.FactoryAddress,
		&p.Reserve0, &p.Reserve1, &p.BaseTokenIndex, &p.BlockNumber, &p.CreatedAt, &p.LastUpdated,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pair: %w", err)
	}
	return &p, nil
}
