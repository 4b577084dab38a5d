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

func TestAlertStore_InsertAssignsIDAndRoundTripsMetadata(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewAlertStore(pool)
	ctx := context.Background()

	alert := &domain.AlertEvent{
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
		AlertType:     domain.AlertWhaleBuy,
		TokenAddress:  "0xtoken",
		TokenSymbol:   "BEE",
		WalletAddress: "0xwhale",
		Title:         "Whale Buy: $7500 BEE",
		AmountUSD:     decimal.RequireFromString("7500"),
		Metadata: domain.AlertMetadata{WhaleTrade: &domain.WhaleTradeMeta{
			AmountUSD: decimal.RequireFromString("7500"),
			Wallet:    "0xwhale",
			TxHash:    "0xtx",
		}},
		DedupKey: "whale-key-1",
	}

	require.NoError(t, store.Insert(ctx, alert))
	assert.NotZero(t, alert.ID)

	alerts, err := store.GetRecent(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	got := alerts[0]
	assert.Equal(t, alert.ID, got.ID)
	assert.Equal(t, domain.AlertWhaleBuy, got.AlertType)
	require.NotNil(t, got.Metadata.WhaleTrade)
	assert.Equal(t, "0xwhale", got.Metadata.WhaleTrade.Wallet)
	assert.True(t, got.Metadata.WhaleTrade.AmountUSD.Equal(decimal.RequireFromString("7500")))
	assert.False(t, got.Processed)
}

func TestAlertStore_DedupKeyUnique(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewAlertStore(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	first := &domain.AlertEvent{
		CreatedAt: now,
		AlertType: domain.AlertNewToken,
		DedupKey:  "same-key",
	}
	require.NoError(t, store.Insert(ctx, first))

	second := &domain.AlertEvent{
		CreatedAt: now,
		AlertType: domain.AlertNewToken,
		DedupKey:  "same-key",
	}
	assert.ErrorIs(t, store.Insert(ctx, second), storage.ErrDuplicateKey)
}

func TestAlertStore_GetRecentOrdersNewestFirst(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewAlertStore(pool)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i, key := range []string{"k1", "k2", "k3"} {
		require.NoError(t, store.Insert(ctx, &domain.AlertEvent{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			AlertType: domain.AlertNewToken,
			DedupKey:  key,
		}))
	}

	alerts, err := store.GetRecent(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "k3", alerts[0].DedupKey)
	assert.Equal(t, "k2", alerts[1].DedupKey)
}
