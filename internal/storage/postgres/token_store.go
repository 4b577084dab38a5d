package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	address, name, symbol, decimals, total_supply, pair_address, creator_address,
	block_number, created_at,
	price_usd, price_bnb, price_change_1h, price_change_24h, market_cap_usd,
	liquidity_usd, liquidity_bnb, volume_1h_usd, volume_24h_usd,
	trades_1h, trades_24h, buys_1h, sells_1h, buys_24h, sells_24h,
	holder_count, holder_count_1h_ago, top10_holder_percent, dev_holdings_percent, sniper_ratio,
	lp_locked, lp_lock_percent, lp_unlock_date, ownership_renounced,
	bee_score, safety_score, traction_score,
	last_updated, indexed_at`

// Upsert inserts or fully replaces a token row keyed by address.
func (s *TokenStore) Upsert(ctx context.Context, t *domain.Token) error {
	if t == nil || t.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29,
			$30, $31, $32, $33, $34, $35, $36, $37, $38)
		ON CONFLICT (address) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			decimals = EXCLUDED.decimals,
			total_supply = EXCLUDED.total_supply,
			pair_address = EXCLUDED.pair_address,
			creator_address = EXCLUDED.creator_address,
			block_number = EXCLUDED.block_number,
			created_at = EXCLUDED.created_at,
			price_usd = EXCLUDED.price_usd,
			price_bnb = EXCLUDED.price_bnb,
			price_change_1h = EXCLUDED.price_change_1h,
			price_change_24h = EXCLUDED.price_change_24h,
			market_cap_usd = EXCLUDED.market_cap_usd,
			liquidity_usd = EXCLUDED.liquidity_usd,
			liquidity_bnb = EXCLUDED.liquidity_bnb,
			volume_1h_usd = EXCLUDED.volume_1h_usd,
			volume_24h_usd = EXCLUDED.volume_24h_usd,
			trades_1h = EXCLUDED.trades_1h,
			trades_24h = EXCLUDED.trades_24h,
			buys_1h = EXCLUDED.buys_1h,
			sells_1h = EXCLUDED.sells_1h,
			buys_24h = EXCLUDED.buys_24h,
			sells_24h = EXCLUDED.sells_24h,
			holder_count = EXCLUDED.holder_count,
			holder_count_1h_ago = EXCLUDED.holder_count_1h_ago,
			top10_holder_percent = EXCLUDED.top10_holder_percent,
			dev_holdings_percent = EXCLUDED.dev_holdings_percent,
			sniper_ratio = EXCLUDED.sniper_ratio,
			lp_locked = EXCLUDED.lp_locked,
			lp_lock_percent = EXCLUDED.lp_lock_percent,
			lp_unlock_date = EXCLUDED.lp_unlock_date,
			ownership_renounced = EXCLUDED.ownership_renounced,
			bee_score = EXCLUDED.bee_score,
			safety_score = EXCLUDED.safety_score,
			traction_score = EXCLUDED.traction_score,
			last_updated = EXCLUDED.last_updated,
			indexed_at = EXCLUDED.indexed_at
	`

	_, err := s.pool.Exec(ctx, query,
		t.Address, t.Name, t.Symbol, t.Decimals, t.TotalSupply, t.PairAddress, t.CreatorAddress,
		t.BlockNumber, t.CreatedAt,
		t.PriceUSD, t.PriceBNB, t.PriceChange1h, t.PriceChange24h, t.MarketCapUSD,
		t.LiquidityUSD, t.LiquidityBNB, t.Volume1hUSD, t.Volume24hUSD,
		t.Trades1h, t.Trades24h, t.Buys1h, t.Sells1h, t.Buys24h, t.Sells24h,
		t.HolderCount, t.HolderCount1hAgo, t.Top10HolderPercent, t.DevHoldingsPercent, t.SniperRatio,
		t.LPLocked, t.LPLockPercent, t.LPUnlockDate, t.OwnershipRenounced,
		t.BeeScore, t.SafetyScore, t.TractionScore,
		t.LastUpdated, t.IndexedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// GetByAddress retrieves a token by contract address.
func (s *TokenStore) GetByAddress(ctx context.Context, address string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE address = $1`
	return s.getOne(ctx, query, address)
}

// GetByPairAddress retrieves the token tracked through the given pair.
func (s *TokenStore) GetByPairAddress(ctx context.Context, pairAddress string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE pair_address = $1`
	return s.getOne(ctx, query, pairAddress)
}

func (s *TokenStore) getOne(ctx context.Context, query string, arg string) (*domain.Token, error) {
	row := s.pool.QueryRow(ctx, query, arg)
	t, err := scanToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return t, nil
}

// ListAddresses returns all tracked token addresses.
func (s *TokenStore) ListAddresses(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT address FROM tokens ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("list token addresses: %w", err)
	}
	defer rows.Close()

	var addrs []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan token address: %w", err)
		}
		addrs = append(addrs, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token addresses: %w", err)
	}
	return addrs, nil
}

func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	err := row.Scan(
		&t.Address, &t.Name, &t.Symbol, &t.Decimals, &t.TotalSupply, &t.PairAddress, &t.CreatorAddress,
		&t.BlockNumber, &t.CreatedAt,
		&t.PriceUSD, &t.PriceBNB, &t.PriceChange1h, &t.PriceChange24h, &t.MarketCapUSD,
		&t.LiquidityUSD, &t.LiquidityBNB, &t.Volume1hUSD, &t.Volume24hUSD,
		&t.Trades1h, &t.Trades24h, &t.Buys1h, &t.Sells1h, &t.Buys24h, &t.Sells24h,
		&t.HolderCount, &t.HolderCount1hAgo, &t.Top10HolderPercent, &t.DevHoldingsPercent, &t.SniperRatio,
		&t.LPLocked, &t.LPLockPercent, &t.LPUnlockDate, &t.OwnershipRenounced,
		&t.BeeScore, &t.SafetyScore, &t.TractionScore,
		&t.LastUpdated, &t.IndexedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
