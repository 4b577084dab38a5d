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

func testActivity(tx, wallet, action string, ts time.Time) *domain.WalletActivity {
	return &domain.WalletActivity{
		TxHash:        tx,
		WalletAddress: wallet,
		TokenAddress:  "0xtoken",
		TokenSymbol:   "HONEY",
		Action:        action,
		BlockNumber:   1000,
		Timestamp:     ts,
		AmountTokens:  decimal.RequireFromString("100"),
		AmountUSD:     decimal.RequireFromString("60"),
		CreatedAt:     ts,
	}
}

func TestWalletActivityStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewWalletActivityStore(pool)
	ctx := context.Background()
	ts := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, store.Insert(ctx, testActivity("0x1", "0xwallet", domain.ActionBuy, ts)))
	require.NoError(t, store.Insert(ctx, testActivity("0x2", "0xwallet", domain.ActionSell, ts.Add(time.Minute))))
	require.NoError(t, store.Insert(ctx, testActivity("0x3", "0xother", domain.ActionBuy, ts)))

	acts, err := store.GetByWallet(ctx, "0xwallet", 10)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, "0x2", acts[0].TxHash, "newest first")
	assert.Equal(t, "0x1", acts[1].TxHash)
	assert.Equal(t, domain.ActionSell, acts[0].Action)

	acts, err = store.GetByWallet(ctx, "0xwallet", 1)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "0x2", acts[0].TxHash)
}

func TestWalletActivityStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewWalletActivityStore(pool)
	ctx := context.Background()
	ts := time.Now().UTC()

	require.NoError(t, store.Insert(ctx, testActivity("0x1", "0xwallet", domain.ActionTransferIn, ts)))

	// Same (tx, wallet, token, action), different payload: still a duplicate.
	dup := testActivity("0x1", "0xwallet", domain.ActionTransferIn, ts)
	dup.AmountTokens = decimal.RequireFromString("999")
	assert.ErrorIs(t, store.Insert(ctx, dup), storage.ErrDuplicateKey)

	// A different action on the same tx is a distinct record.
	require.NoError(t, store.Insert(ctx, testActivity("0x1", "0xwallet", domain.ActionBuy, ts)))
}

func TestWalletActivityStore_InsertInvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewWalletActivityStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.WalletActivity{WalletAddress: "0xw"}), storage.ErrInvalidInput)
}
