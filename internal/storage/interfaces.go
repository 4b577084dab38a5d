package storage

import (
	"context"
	"time"

	"beanbee-engine/internal/domain"
)

// TokenStore provides access to tokens storage. Tokens are mutable aggregate
// rows keyed by lowercase contract address.
type TokenStore interface {
	// Upsert inserts or fully replaces a token row.
	Upsert(ctx context.Context, t *domain.Token) error

	// GetByAddress retrieves a token by contract address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.Token, error)

	// GetByPairAddress retrieves the token tracked through the given pair.
	// Returns ErrNotFound if no token references the pair.
	GetByPairAddress(ctx context.Context, pairAddress string) (*domain.Token, error)

	// ListAddresses returns all tracked token addresses.
	ListAddresses(ctx context.Context) ([]string, error)
}

// PairStore provides access to pairs storage.
type PairStore interface {
	// Upsert inserts or fully replaces a pair row.
	Upsert(ctx context.Context, p *domain.Pair) error

	// GetByAddress retrieves a pair by address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.Pair, error)
}

// SwapStore provides access to swaps storage. Swaps are append-only.
type SwapStore interface {
	// Insert adds a new swap. Returns ErrDuplicateKey if (tx_hash, log_index) exists.
	Insert(ctx context.Context, s *domain.Swap) error

	// GetByToken retrieves swaps for a token with timestamp strictly after
	// the given instant, ordered by timestamp ASC.
	GetByToken(ctx context.Context, tokenAddress string, after time.Time) ([]*domain.Swap, error)
}

// LpLockStore provides access to lp_locks storage.
type LpLockStore interface {
	// Upsert inserts or replaces a lock keyed by (token, pair, lock contract).
	Upsert(ctx context.Context, l *domain.LpLock) error

	// GetByToken retrieves all lock rows for a token, active and inactive.
	GetByToken(ctx context.Context, tokenAddress string) ([]*domain.LpLock, error)

	// Deactivate clears the active flag on a lock. Returns ErrNotFound if
	// the lock does not exist.
	Deactivate(ctx context.Context, tokenAddress, pairAddress, lockContract string) error
}

// TokenHolderStore provides access to token_holders storage.
type TokenHolderStore interface {
	// Upsert inserts or replaces a holder row keyed by (token, wallet).
	Upsert(ctx context.Context, h *domain.TokenHolder) error

	// Get retrieves one holder row. Returns ErrNotFound if not exists.
	Get(ctx context.Context, tokenAddress, walletAddress string) (*domain.TokenHolder, error)

	// GetByToken retrieves all holder rows for a token.
	GetByToken(ctx context.Context, tokenAddress string) ([]*domain.TokenHolder, error)

	// GetByWallet retrieves all holder rows for a wallet across tokens.
	GetByWallet(ctx context.Context, walletAddress string) ([]*domain.TokenHolder, error)
}

// SnapshotStore provides access to price_snapshots storage. Snapshots are
// immutable once written: inserting an existing (token, timestamp) bucket is
// a silent no-op.
type SnapshotStore interface {
	// Insert writes a snapshot unless the bucket already exists.
	Insert(ctx context.Context, s *domain.PriceSnapshot) error

	// GetByToken retrieves snapshots for a token within [start, end], ordered
	// by timestamp ASC.
	GetByToken(ctx context.Context, tokenAddress string, start, end time.Time) ([]*domain.PriceSnapshot, error)
}

// WalletStore provides access to wallets storage.
type WalletStore interface {
	// Upsert inserts or replaces a wallet row.
	Upsert(ctx context.Context, w *domain.Wallet) error

	// GetByAddress retrieves a wallet. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)

	// ListAddresses returns all known wallet addresses.
	ListAddresses(ctx context.Context) ([]string, error)
}

// WalletActivityStore provides access to wallet_activity storage. Rows are
// immutable; re-inserting an existing natural key is a silent no-op.
type WalletActivityStore interface {
	// Insert writes an activity row unless its natural key already exists.
	Insert(ctx context.Context, a *domain.WalletActivity) error

	// GetByWallet retrieves activity for a wallet ordered by timestamp DESC,
	// newest first, at most limit rows.
	GetByWallet(ctx context.Context, walletAddress string, limit int) ([]*domain.WalletActivity, error)
}

// AlertStore provides access to alert_events storage. Alerts are append-only
// from the engine's side; the processed flag belongs to the delivery
// subsystem.
type AlertStore interface {
	// Insert appends a new alert and fills in its assigned ID.
	Insert(ctx context.Context, a *domain.AlertEvent) error

	// GetRecent retrieves alerts created at or after the given instant,
	// ordered by created_at DESC.
	GetRecent(ctx context.Context, since time.Time) ([]*domain.AlertEvent, error)
}
