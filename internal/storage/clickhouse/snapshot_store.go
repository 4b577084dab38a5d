package clickhouse

import (
	"context"
	"fmt"
	"time"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert writes a snapshot unless the (token, timestamp) bucket already
// exists. MergeTree doesn't enforce uniqueness, so the bucket is checked
// explicitly; snapshot writes for one token are serialized upstream.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.PriceSnapshot) error {
	if snap == nil || snap.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, snap.TokenAddress, snap.Timestamp)
	if err != nil {
		return fmt.Errorf("check snapshot exists: %w", err)
	}
	if exists {
		return nil
	}

	query := `
		INSERT INTO price_snapshots (
			token_address, timestamp, price_usd, price_bnb, liquidity_usd,
			volume_usd, market_cap_usd, holder_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		snap.TokenAddress, snap.Timestamp, snap.PriceUSD, snap.PriceBNB,
		snap.LiquidityUSD, snap.VolumeUSD, snap.MarketCapUSD, uint32(snap.HolderCount),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetByToken retrieves snapshots for a token within [start, end], ordered by
// timestamp ASC.
func (s *SnapshotStore) GetByToken(ctx context.Context, tokenAddress string, start, end time.Time) ([]*domain.PriceSnapshot, error) {
	query := `
		SELECT token_address, timestamp, price_usd, price_bnb, liquidity_usd,
			volume_usd, market_cap_usd, holder_count
		FROM price_snapshots
		WHERE token_address = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenAddress, start, end)
	if err != nil {
		return nil, fmt.Errorf("query snapshots by token: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.PriceSnapshot
	for rows.Next() {
		var snap domain.PriceSnapshot
		var holderCount uint32

		err := rows.Scan(
			&snap.TokenAddress, &snap.Timestamp, &snap.PriceUSD, &snap.PriceBNB,
			&snap.LiquidityUSD, &snap.VolumeUSD, &snap.MarketCapUSD, &holderCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		snap.HolderCount = int(holderCount)
		snaps = append(snaps, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snaps, nil
}

// exists checks if a snapshot with the given bucket exists.
func (s *SnapshotStore) exists(ctx context.Context, tokenAddress string, timestamp time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM price_snapshots
		WHERE token_address = ? AND timestamp = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, tokenAddress, timestamp).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
