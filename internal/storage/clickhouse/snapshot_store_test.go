package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beanbee-engine/internal/domain"
	chstore "beanbee-engine/internal/storage/clickhouse"
)

func testSnapshot(token string, ts time.Time) *domain.PriceSnapshot {
	return &domain.PriceSnapshot{
		TokenAddress: token,
		Timestamp:    ts,
		PriceUSD:     decimal.RequireFromString("1.5"),
		PriceBNB:     decimal.RequireFromString("0.0025"),
		LiquidityUSD: decimal.RequireFromString("12000"),
		VolumeUSD:    decimal.RequireFromString("300"),
		MarketCapUSD: decimal.RequireFromString("1500000"),
		HolderCount:  42,
	}
}

func TestSnapshotStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewSnapshotStore(conn)
	ctx := context.Background()
	bucket := time.Now().UTC().Truncate(5 * time.Minute)

	require.NoError(t, store.Insert(ctx, testSnapshot("0xtoken", bucket)))

	snaps, err := store.GetByToken(ctx, "0xtoken", bucket.Add(-time.Hour), bucket)
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	got := snaps[0]
	assert.Equal(t, "0xtoken", got.TokenAddress)
	assert.True(t, got.PriceUSD.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, got.PriceBNB.Equal(decimal.RequireFromString("0.0025")))
	assert.True(t, got.LiquidityUSD.Equal(decimal.RequireFromString("12000")))
	assert.Equal(t, 42, got.HolderCount)
}

func TestSnapshotStore_InsertSameBucketIsNoop(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewSnapshotStore(conn)
	ctx := context.Background()
	bucket := time.Now().UTC().Truncate(5 * time.Minute)

	require.NoError(t, store.Insert(ctx, testSnapshot("0xtoken", bucket)))

	// Re-inserting the same bucket keeps the first row.
	second := testSnapshot("0xtoken", bucket)
	second.PriceUSD = decimal.RequireFromString("99")
	require.NoError(t, store.Insert(ctx, second))

	snaps, err := store.GetByToken(ctx, "0xtoken", bucket.Add(-time.Hour), bucket)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].PriceUSD.Equal(decimal.RequireFromString("1.5")))
}

func TestSnapshotStore_GetByTokenRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewSnapshotStore(conn)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(5 * time.Minute).Add(-time.Hour)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Insert(ctx, testSnapshot("0xtoken", base.Add(time.Duration(i)*5*time.Minute))))
	}
	require.NoError(t, store.Insert(ctx, testSnapshot("0xother", base)))

	// [start, end] is inclusive on both ends.
	snaps, err := store.GetByToken(ctx, "0xtoken", base.Add(5*time.Minute), base.Add(10*time.Minute))
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, base.Add(5*time.Minute).Unix(), snaps[0].Timestamp.Unix())
	assert.Equal(t, base.Add(10*time.Minute).Unix(), snaps[1].Timestamp.Unix())
}

func TestSnapshotStore_InsertInvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewSnapshotStore(conn)
	err := store.Insert(context.Background(), &domain.PriceSnapshot{})
	assert.Error(t, err)
}
