package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// TokenHolderStore implements storage.TokenHolderStore using PostgreSQL.
type TokenHolderStore struct {
	pool *Pool
}

// NewTokenHolderStore creates a new TokenHolderStore.
func NewTokenHolderStore(pool *Pool) *TokenHolderStore {
	return &TokenHolderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenHolderStore = (*TokenHolderStore)(nil)

// Upsert inserts or replaces a holder row keyed by (token, wallet).
func (s *TokenHolderStore) Upsert(ctx context.Context, h *domain.TokenHolder) error {
	if h == nil || h.TokenAddress == "" || h.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_holders (
			token_address, wallet_address, balance, percent_of_supply,
			is_dev, is_sniper, is_contract, first_buy_block, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (token_address, wallet_address) DO UPDATE SET
			balance = EXCLUDED.balance,
			percent_of_supply = EXCLUDED.percent_of_supply,
			is_dev = EXCLUDED.is_dev,
			is_sniper = EXCLUDED.is_sniper,
			is_contract = EXCLUDED.is_contract,
			first_buy_block = EXCLUDED.first_buy_block,
			last_updated = EXCLUDED.last_updated
	`

	_, err := s.pool.Exec(ctx, query,
		h.TokenAddress, h.WalletAddress, h.Balance, h.PercentOfSupply,
		h.IsDev, h.IsSniper, h.IsContract, h.FirstBuyBlock, h.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upsert token holder: %w", err)
	}
	return nil
}

const holderColumns = `
	token_address, wallet_address, balance, percent_of_supply,
	is_dev, is_sniper, is_contract, first_buy_block, last_updated`

// Get retrieves one holder row.
func (s *TokenHolderStore) Get(ctx context.Context, tokenAddress, walletAddress string) (*domain.TokenHolder, error) {
	query := `SELECT ` + holderColumns + ` FROM token_holders WHERE token_address = $1 AND wallet_address = $2`

	var h domain.TokenHolder
	err := s.pool.QueryRow(ctx, query, tokenAddress, walletAddress).Scan(
		&h.TokenAddress, &h.WalletAddress, &h.Balance, &h.PercentOfSupply,
		&h.IsDev, &h.IsSniper, &h.IsContract, &h.FirstBuyBlock, &h.LastUpdated,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token holder: %w", err)
	}
	return &h, nil
}

// GetByToken retrieves all holder rows for a token.
func (s *TokenHolderStore) GetByToken(ctx context.Context, tokenAddress string) ([]*domain.TokenHolder, error) {
	query := `SELECT ` + holderColumns + ` FROM token_holders WHERE token_address = $1 ORDER BY balance DESC, wallet_address ASC`

	rows, err := s.pool.Query(ctx, query, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("get holders by token: %w", err)
	}
	defer rows.Close()

	return scanHolders(rows)
}

// GetByWallet retrieves all holder rows for a wallet across tokens.
func (s *TokenHolderStore) GetByWallet(ctx context.Context, walletAddress string) ([]*domain.TokenHolder, error) {
	query := `SELECT ` + holderColumns + ` FROM token_holders WHERE wallet_address = $1 ORDER BY token_address ASC`

	rows, err := s.pool.Query(ctx, query, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("get holders by wallet: %w", err)
	}
	defer rows.Close()

	return scanHolders(rows)
}

func scanHolders(rows pgx.Rows) ([]*domain.TokenHolder, error) {
	var holders []*domain.TokenHolder
	for rows.Next() {
		var h domain.TokenHolder
		err := rows.Scan(
			&h.TokenAddress, &h.WalletAddress, &h.Balance, &h.PercentOfSupply,
			&h.IsDev, &h.IsSniper, &h.IsContract, &h.FirstBuyBlock, &h.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan holder row: %w", err)
		}
		holders = append(holders, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holder rows: %w", err)
	}
	return holders, nil
}
