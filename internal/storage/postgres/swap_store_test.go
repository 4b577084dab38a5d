package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
	"beanbee-engine/internal/storage/postgres"
)

func testSwap(tx string, logIndex int, ts time.Time) *domain.Swap {
	return &domain.Swap{
		TxHash:        tx,
		LogIndex:      logIndex,
		BlockNumber:   1000,
		Timestamp:     ts,
		PairAddress:   "0xpair",
		TokenAddress:  "0xtoken",
		WalletAddress: "0xwallet",
		TradeType:     domain.TradeBuy,
		AmountTokens:  decimal.RequireFromString("100"),
		AmountBNB:     decimal.RequireFromString("0.5"),
		AmountUSD:     decimal.RequireFromString("300"),
		PriceUSD:      decimal.RequireFromString("3"),
		CreatedAt:     ts,
	}
}

func TestSwapStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSwapStore(pool)
	ctx := context.Background()
	ts := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, store.Insert(ctx, testSwap("0x1", 0, ts)))

	swaps, err := store.GetByToken(ctx, "0xtoken", time.Time{})
	require.NoError(t, err)
	require.Len(t, swaps, 1)
	assert.Equal(t, "0x1", swaps[0].TxHash)
	assert.True(t, swaps[0].AmountUSD.Equal(decimal.RequireFromString("300")))
	assert.Equal(t, domain.TradeBuy, swaps[0].TradeType)
}

func TestSwapStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSwapStore(pool)
	ctx := context.Background()
	ts := time.Now().UTC()

	require.NoError(t, store.Insert(ctx, testSwap("0x1", 0, ts)))

	// Same (tx_hash, log_index), different payload: still a duplicate.
	dup := testSwap("0x1", 0, ts)
	dup.AmountUSD = decimal.RequireFromString("999")
	assert.ErrorIs(t, store.Insert(ctx, dup), storage.ErrDuplicateKey)

	// Same tx, different log index is a distinct swap.
	require.NoError(t, store.Insert(ctx, testSwap("0x1", 1, ts)))
}

func TestSwapStore_GetByTokenAfterIsExclusive(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSwapStore(pool)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, store.Insert(ctx, testSwap("0x1", 0, base)))
	require.NoError(t, store.Insert(ctx, testSwap("0x2", 0, base.Add(time.Minute))))

	swaps, err := store.GetByToken(ctx, "0xtoken", base)
	require.NoError(t, err)
	require.Len(t, swaps, 1)
	assert.Equal(t, "0x2", swaps[0].TxHash)
}
