// Package jobs schedules the periodic work that is not driven by individual
// chain events: lock expiry sweeps, hourly holder-count rolls, and wallet
// aggregate recomputation.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/ingestion"
	"beanbee-engine/internal/storage"
)

// Options are the schedules. Cron specs use the standard five-field format.
type Options struct {
	WalletRecomputeSpec string
	HolderRollSpec      string
	LockSweepInterval   time.Duration
}

// Scheduler owns the cron runner and the lock-sweep ticker. Maintenance work
// that touches a token goes through the sink so it serializes behind the
// token's worker; wallet recomputation writes only wallet rows and runs
// directly.
type Scheduler struct {
	opts    Options
	tokens  storage.TokenStore
	holders storage.TokenHolderStore
	wallets storage.WalletStore
	acts    storage.WalletActivityStore
	sink    ingestion.Sink
	log     *logrus.Entry

	cron   *cron.Cron
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler over the given stores and event sink.
func NewScheduler(
	opts Options,
	tokens storage.TokenStore,
	holders storage.TokenHolderStore,
	wallets storage.WalletStore,
	acts storage.WalletActivityStore,
	sink ingestion.Sink,
	log *logrus.Entry,
) *Scheduler {
	return &Scheduler{
		opts:    opts,
		tokens:  tokens,
		holders: holders,
		wallets: wallets,
		acts:    acts,
		sink:    sink,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start registers the cron entries and launches the lock-sweep ticker.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.cron = cron.New()
	if spec := s.opts.WalletRecomputeSpec; spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.recomputeWallets(ctx) }); err != nil {
			return fmt.Errorf("wallet recompute schedule %q: %w", spec, err)
		}
	}
	if spec := s.opts.HolderRollSpec; spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.rollHolderCounts(ctx) }); err != nil {
			return fmt.Errorf("holder roll schedule %q: %w", spec, err)
		}
	}
	s.cron.Start()

	go s.lockSweepLoop(ctx)
	return nil
}

// Stop halts the cron runner and the sweep ticker.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	<-s.done
}

func (s *Scheduler) lockSweepLoop(ctx context.Context) {
	defer close(s.done)
	if s.opts.LockSweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.opts.LockSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepLocks(ctx)
		}
	}
}

// sweepLocks enqueues a lock sweep for every tracked token. The sweep itself
// runs on the token's worker; no-change sweeps are cheap no-ops there.
func (s *Scheduler) sweepLocks(ctx context.Context) {
	addrs, err := s.tokens.ListAddresses(ctx)
	if err != nil {
		s.log.WithError(err).Error("lock sweep: listing tokens failed")
		return
	}
	now := time.Now().UTC()
	for _, addr := range addrs {
		ev := &domain.MaintenanceEvent{
			TokenAddress: addr,
			Task:         domain.MaintenanceLockSweep,
			AsOf:         now,
		}
		if err := s.sink.Enqueue(ctx, ev); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.WithError(err).WithField("token", addr).Error("lock sweep enqueue failed")
		}
	}
}

// rollHolderCounts enqueues the hourly holder-count roll per token.
func (s *Scheduler) rollHolderCounts(ctx context.Context) {
	addrs, err := s.tokens.ListAddresses(ctx)
	if err != nil {
		s.log.WithError(err).Error("holder roll: listing tokens failed")
		return
	}
	now := time.Now().UTC()
	for _, addr := range addrs {
		ev := &domain.MaintenanceEvent{
			TokenAddress: addr,
			Task:         domain.MaintenanceHolderSnapshot,
			AsOf:         now,
		}
		if err := s.sink.Enqueue(ctx, ev); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.WithError(err).WithField("token", addr).Error("holder roll enqueue failed")
		}
	}
}

// recomputeWallets rebuilds the wallet aggregates from holder rows and the
// activity log. Runs over every wallet the engine has seen.
func (s *Scheduler) recomputeWallets(ctx context.Context) {
	addrs, err := s.wallets.ListAddresses(ctx)
	if err != nil {
		s.log.WithError(err).Error("wallet recompute: listing wallets failed")
		return
	}

	updated := 0
	for _, addr := range addrs {
		if ctx.Err() != nil {
			return
		}
		if err := s.recomputeWallet(ctx, addr); err != nil {
			s.log.WithError(err).WithField("wallet", addr).Warn("wallet recompute failed")
			continue
		}
		updated++
	}
	s.log.WithField("wallets", updated).Debug("wallet aggregates recomputed")
}

// recomputeWallet rebuilds one wallet's aggregates: token count and estimated
// value from current holdings and token prices, last activity from the
// activity log.
func (s *Scheduler) recomputeWallet(ctx context.Context, address string) error {
	wallet, err := s.wallets.GetByAddress(ctx, address)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		wallet = &domain.Wallet{Address: address}
	case err != nil:
		return fmt.Errorf("get wallet: %w", err)
	}

	holdings, err := s.holders.GetByWallet(ctx, address)
	if err != nil {
		return fmt.Errorf("get holdings: %w", err)
	}

	count := 0
	value := decimal.Zero
	for _, h := range holdings {
		if !h.Holding() {
			continue
		}
		count++
		token, err := s.tokens.GetByAddress(ctx, h.TokenAddress)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		} else if err != nil {
			return fmt.Errorf("get token: %w", err)
		}
		value = value.Add(h.Balance.Mul(token.PriceUSD))
	}

	wallet.TokenCount = count
	wallet.EstimatedValueUSD = value

	recent, err := s.acts.GetByWallet(ctx, address, 1)
	if err != nil {
		return fmt.Errorf("get activity: %w", err)
	}
	if len(recent) > 0 {
		wallet.LastActivity = recent[0].Timestamp
	}

	if err := s.wallets.Upsert(ctx, wallet); err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	}
	return nil
}
