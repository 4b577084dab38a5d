package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// SwapStore implements storage.SwapStore using PostgreSQL.
type SwapStore struct {
	pool *Pool
}

// NewSwapStore creates a new SwapStore.
func NewSwapStore(pool *Pool) *SwapStore {
	return &SwapStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SwapStore = (*SwapStore)(nil)

// Insert adds a new swap. Returns ErrDuplicateKey if (tx_hash, log_index) exists.
func (s *SwapStore) Insert(ctx context.Context, swap *domain.Swap) error {
	if swap == nil || swap.TxHash == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO swaps (
			tx_hash, log_index, block_number, timestamp, pair_address, token_address,
			wallet_address, trade_type, amount_tokens, amount_bnb, amount_usd,
			price_usd, is_whale, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.pool.Exec(ctx, query,
		swap.TxHash, swap.LogIndex, swap.BlockNumber, swap.Timestamp,
		swap.PairAddress, swap.TokenAddress, swap.WalletAddress, swap.TradeType,
		swap.AmountTokens, swap.AmountBNB, swap.AmountUSD, swap.PriceUSD,
		swap.IsWhale, swap.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert swap: %w", err)
	}
	return nil
}

// GetByToken retrieves swaps for a token with timestamp strictly after the
// given instant, ordered by timestamp ASC.
func (s *SwapStore) GetByToken(ctx context.Context, tokenAddress string, after time.Time) ([]*domain.Swap, error) {
	query := `
		SELECT tx_hash, log_index, block_number, timestamp, pair_address, token_address,
			wallet_address, trade_type, amount_tokens, amount_bnb, amount_usd,
			price_usd, is_whale, created_at
		FROM swaps
		WHERE token_address = $1 AND timestamp > $2
		ORDER BY timestamp ASC, tx_hash ASC, log_index ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenAddress, after)
	if err != nil {
		return nil, fmt.Errorf("get swaps by token: %w", err)
	}
	defer rows.Close()

	return scanSwaps(rows)
}

func scanSwaps(rows pgx.Rows) ([]*domain.Swap, error) {
	var swaps []*domain.Swap
	for rows.Next() {
		var swap domain.Swap
		err := rows.Scan(
			&swap.TxHash, &swap.LogIndex, &swap.BlockNumber, &swap.Timestamp,
			&swap.PairAddress, &swap.TokenAddress, &swap.WalletAddress, &swap.TradeType,
			&swap.AmountTokens, &swap.AmountBNB, &swap.AmountUSD, &swap.PriceUSD,
			&swap.IsWhale, &swap.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap row: %w", err)
		}
		swaps = append(swaps, &swap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap rows: %w", err)
	}
	return swaps, nil
}
