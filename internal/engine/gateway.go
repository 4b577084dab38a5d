package engine

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/observability"
	"beanbee-engine/internal/storage"
)

// Gateway is the persistence layer in front of the raw stores. Every write
// goes through it: it stamps updated-at fields explicitly at write time and
// retries transient failures with exponential backoff up to a bounded
// attempt count. Exhausted retries surface as a PersistenceError, fatal for
// the event, never for the worker.
//
// The wrapped fields satisfy the storage interfaces, so collaborators that
// take a store can be handed the retrying variant transparently.
type Gateway struct {
	Tokens     storage.TokenStore
	Pairs      storage.PairStore
	Swaps      storage.SwapStore
	Locks      storage.LpLockStore
	Holders    storage.TokenHolderStore
	Snapshots  storage.SnapshotStore
	Wallets    storage.WalletStore
	Activities storage.WalletActivityStore
	Alerts     storage.AlertStore
}

// GatewayOptions configures retry behavior.
type GatewayOptions struct {
	MaxAttempts int
	Now         func() time.Time // defaults to time.Now
	Log         *logrus.Entry
	Metrics     *observability.Metrics
}

// Stores bundles the raw backends handed to NewGateway.
type Stores struct {
	Tokens     storage.TokenStore
	Pairs      storage.PairStore
	Swaps      storage.SwapStore
	Locks      storage.LpLockStore
	Holders    storage.TokenHolderStore
	Snapshots  storage.SnapshotStore
	Wallets    storage.WalletStore
	Activities storage.WalletActivityStore
	Alerts     storage.AlertStore
}

// NewGateway wraps the raw stores with retry and timestamping.
func NewGateway(s Stores, opts GatewayOptions) *Gateway {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &retrier{opts: opts}
	return &Gateway{
		Tokens:     &tokenGateway{inner: s.Tokens, r: r},
		Pairs:      &pairGateway{inner: s.Pairs, r: r},
		Swaps:      &swapGateway{inner: s.Swaps, r: r},
		Locks:      &lockGateway{inner: s.Locks, r: r},
		Holders:    &holderGateway{inner: s.Holders, r: r},
		Snapshots:  &snapshotGateway{inner: s.Snapshots, r: r},
		Wallets:    &walletGateway{inner: s.Wallets, r: r},
		Activities: &activityGateway{inner: s.Activities, r: r},
		Alerts:     &alertGateway{inner: s.Alerts, r: r},
	}
}

type retrier struct {
	opts GatewayOptions
}

// do runs fn with exponential backoff. Domain errors (duplicate, not found,
// invalid input) are contracts, not transient failures, and pass through
// untouched on the first attempt.
func (r *retrier) do(ctx context.Context, op string, fn func() error) error {
	attempt := 0
	wrapped := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, storage.ErrDuplicateKey) ||
			errors.Is(err, storage.ErrNotFound) ||
			errors.Is(err, storage.ErrInvalidInput) {
			return backoff.Permanent(err)
		}
		if r.opts.Metrics != nil {
			r.opts.Metrics.PersistenceRetries.WithLabelValues(op).Inc()
		}
		if r.opts.Log != nil {
			r.opts.Log.WithError(err).WithFields(logrus.Fields{
				"op":      op,
				"attempt": attempt,
			}).Warn("store call failed, retrying")
		}
		return err
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(r.opts.MaxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(wrapped, bo); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) ||
			errors.Is(err, storage.ErrNotFound) ||
			errors.Is(err, storage.ErrInvalidInput) {
			return err
		}
		if r.opts.Metrics != nil {
			r.opts.Metrics.PersistenceFailures.WithLabelValues(op).Inc()
		}
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}

type tokenGateway struct {
	inner storage.TokenStore
	r     *retrier
}

func (g *tokenGateway) Upsert(ctx context.Context, t *domain.Token) error {
	t.LastUpdated = g.r.opts.Now()
	return g.r.do(ctx, "token.upsert", func() error { return g.inner.Upsert(ctx, t) })
}

func (g *tokenGateway) GetByAddress(ctx context.Context, address string) (*domain.Token, error) {
	var out *domain.Token
	err := g.r.do(ctx, "token.get", func() error {
		var err error
		out, err = g.inner.GetByAddress(ctx, address)
		return err
	})
	return out, err
}

func (g *tokenGateway) GetByPairAddress(ctx context.Context, pairAddress string) (*domain.Token, error) {
	var out *domain.Token
	err := g.r.do(ctx, "token.get_by_pair", func() error {
		var err error
		out, err = g.inner.GetByPairAddress(ctx, pairAddress)
		return err
	})
	return out, err
}

func (g *tokenGateway) ListAddresses(ctx context.Context) ([]string, error) {
	var out []string
	err := g.r.do(ctx, "token.list", func() error {
		var err error
		out, err = g.inner.ListAddresses(ctx)
		return err
	})
	return out, err
}

type pairGateway struct {
	inner storage.PairStore
	r     *retrier
}

func (g *pairGateway) Upsert(ctx context.Context, p *domain.Pair) error {
	p.LastUpdated = g.r.opts.Now()
	return g.r.do(ctx, "pair.upsert", func() error { return g.inner.Upsert(ctx, p) })
}

func (g *pairGateway) GetByAddress(ctx context.Context, address string) (*domain.Pair, error) {
	var out *domain.Pair
	err := g.r.do(ctx, "pair.get", func() error {
		var err error
		out, err = g.inner.GetByAddress(ctx, address)
		return err
	})
	return out, err
}

type swapGateway struct {
	inner storage.SwapStore
	r     *retrier
}

func (g *swapGateway) Insert(ctx context.Context, s *domain.Swap) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = g.r.opts.Now()
	}
	return g.r.do(ctx, "swap.insert", func() error { return g.inner.Insert(ctx, s) })
}

func (g *swapGateway) GetByToken(ctx context.Context, tokenAddress string, after time.Time) ([]*domain.Swap, error) {
	var out []*domain.Swap
	err := g.r.do(ctx, "swap.get_by_token", func() error {
		var err error
		out, err = g.inner.GetByToken(ctx, tokenAddress, after)
		return err
	})
	return out, err
}

type lockGateway struct {
	inner storage.LpLockStore
	r     *retrier
}

func (g *lockGateway) Upsert(ctx context.Context, l *domain.LpLock) error {
	now := g.r.opts.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return g.r.do(ctx, "lock.upsert", func() error { return g.inner.Upsert(ctx, l) })
}

func (g *lockGateway) GetByToken(ctx context.Context, tokenAddress string) ([]*domain.LpLock, error) {
	var out []*domain.LpLock
	err := g.r.do(ctx, "lock.get_by_token", func() error {
		var err error
		out, err = g.inner.GetByToken(ctx, tokenAddress)
		return err
	})
	return out, err
}

func (g *lockGateway) Deactivate(ctx context.Context, tokenAddress, pairAddress, lockContract string) error {
	return g.r.do(ctx, "lock.deactivate", func() error {
		return g.inner.Deactivate(ctx, tokenAddress, pairAddress, lockContract)
	})
}

type holderGateway struct {
	inner storage.TokenHolderStore
	r     *retrier
}

func (g *holderGateway) Upsert(ctx context.Context, h *domain.TokenHolder) error {
	if h.LastUpdated.IsZero() {
		h.LastUpdated = g.r.opts.Now()
	}
	return g.r.do(ctx, "holder.upsert", func() error { return g.inner.Upsert(ctx, h) })
}

func (g *holderGateway) Get(ctx context.Context, tokenAddress, walletAddress string) (*domain.TokenHolder, error) {
	var out *domain.TokenHolder
	err := g.r.do(ctx, "holder.get", func() error {
		var err error
		out, err = g.inner.Get(ctx, tokenAddress, walletAddress)
		return err
	})
	return out, err
}

func (g *holderGateway) GetByToken(ctx context.Context, tokenAddress string) ([]*domain.TokenHolder, error) {
	var out []*domain.TokenHolder
	err := g.r.do(ctx, "holder.get_by_token", func() error {
		var err error
		out, err = g.inner.GetByToken(ctx, tokenAddress)
		return err
	})
	return out, err
}

func (g *holderGateway) GetByWallet(ctx context.Context, walletAddress string) ([]*domain.TokenHolder, error) {
	var out []*domain.TokenHolder
	err := g.r.do(ctx, "holder.get_by_wallet", func() error {
		var err error
		out, err = g.inner.GetByWallet(ctx, walletAddress)
		return err
	})
	return out, err
}

type snapshotGateway struct {
	inner storage.SnapshotStore
	r     *retrier
}

func (g *snapshotGateway) Insert(ctx context.Context, s *domain.PriceSnapshot) error {
	return g.r.do(ctx, "snapshot.insert", func() error { return g.inner.Insert(ctx, s) })
}

func (g *snapshotGateway) GetByToken(ctx context.Context, tokenAddress string, start, end time.Time) ([]*domain.PriceSnapshot, error) {
	var out []*domain.PriceSnapshot
	err := g.r.do(ctx, "snapshot.get_by_token", func() error {
		var err error
		out, err = g.inner.GetByToken(ctx, tokenAddress, start, end)
		return err
	})
	return out, err
}

type walletGateway struct {
	inner storage.WalletStore
	r     *retrier
}

func (g *walletGateway) Upsert(ctx context.Context, w *domain.Wallet) error {
	now := g.r.opts.Now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	return g.r.do(ctx, "wallet.upsert", func() error { return g.inner.Upsert(ctx, w) })
}

func (g *walletGateway) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := g.r.do(ctx, "wallet.get", func() error {
		var err error
		out, err = g.inner.GetByAddress(ctx, address)
		return err
	})
	return out, err
}

func (g *walletGateway) ListAddresses(ctx context.Context) ([]string, error) {
	var out []string
	err := g.r.do(ctx, "wallet.list", func() error {
		var err error
		out, err = g.inner.ListAddresses(ctx)
		return err
	})
	return out, err
}

type activityGateway struct {
	inner storage.WalletActivityStore
	r     *retrier
}

func (g *activityGateway) Insert(ctx context.Context, a *domain.WalletActivity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = g.r.opts.Now()
	}
	return g.r.do(ctx, "activity.insert", func() error { return g.inner.Insert(ctx, a) })
}

func (g *activityGateway) GetByWallet(ctx context.Context, walletAddress string, limit int) ([]*domain.WalletActivity, error) {
	var out []*domain.WalletActivity
	err := g.r.do(ctx, "activity.get_by_wallet", func() error {
		var err error
		out, err = g.inner.GetByWallet(ctx, walletAddress, limit)
		return err
	})
	return out, err
}

type alertGateway struct {
	inner storage.AlertStore
	r     *retrier
}

func (g *alertGateway) Insert(ctx context.Context, a *domain.AlertEvent) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = g.r.opts.Now()
	}
	return g.r.do(ctx, "alert.insert", func() error { return g.inner.Insert(ctx, a) })
}

func (g *alertGateway) GetRecent(ctx context.Context, since time.Time) ([]*domain.AlertEvent, error) {
	var out []*domain.AlertEvent
	err := g.r.do(ctx, "alert.get_recent", func() error {
		var err error
		out, err = g.inner.GetRecent(ctx, since)
		return err
	})
	return out, err
}

var (
	_ storage.TokenStore          = (*tokenGateway)(nil)
	_ storage.PairStore           = (*pairGateway)(nil)
	_ storage.SwapStore           = (*swapGateway)(nil)
	_ storage.LpLockStore         = (*lockGateway)(nil)
	_ storage.TokenHolderStore    = (*holderGateway)(nil)
	_ storage.SnapshotStore       = (*snapshotGateway)(nil)
	_ storage.WalletStore         = (*walletGateway)(nil)
	_ storage.WalletActivityStore = (*activityGateway)(nil)
	_ storage.AlertStore          = (*alertGateway)(nil)
)
