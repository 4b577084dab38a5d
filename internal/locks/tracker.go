package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

var hundred = decimal.NewFromInt(100)

// Rollup is the token-level lock status derived from all lock rows.
type Rollup struct {
	Locked      bool
	LockPercent decimal.Decimal // sum over currently locked rows, capped at 100
	UnlockDate  *time.Time      // latest unlock date among locked rows, nil when none
}

// Tracker maintains per-lock state transitions and the token-level rollup.
// Lock rows move Unlocked -> Locked on a lock event and Locked -> Expired
// when the unlock date passes; expiry is evaluated lazily on rollup or by
// the periodic sweep, no event signals it.
type Tracker struct {
	locks storage.LpLockStore
}

// NewTracker creates a lock tracker over the given store.
func NewTracker(locks storage.LpLockStore) *Tracker {
	return &Tracker{locks: locks}
}

// ApplyLock records a lock event and returns the refreshed rollup.
// Re-locking after expiry arrives with a new lock contract identity and is
// stored as a fresh row; the expired row is kept for history.
func (t *Tracker) ApplyLock(ctx context.Context, ev *domain.LockEvent, now time.Time) (Rollup, error) {
	name := ev.LockContractName
	if name == "" {
		name = domain.LockerName(ev.LockContract)
	}

	lock := &domain.LpLock{
		TokenAddress:     domain.NormalizeAddress(ev.TokenAddress),
		PairAddress:      domain.NormalizeAddress(ev.PairAddress),
		LockContract:     domain.NormalizeAddress(ev.LockContract),
		LockContractName: name,
		LockedAmount:     ev.LockedAmount,
		LockedPercent:    ev.LockedPercent,
		LockDate:         ev.LockDate,
		UnlockDate:       ev.UnlockDate,
		TxHash:           ev.TxHash,
		BlockNumber:      ev.BlockNumber,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := t.locks.Upsert(ctx, lock); err != nil {
		return Rollup{}, fmt.Errorf("upsert lp lock: %w", err)
	}

	return t.Compute(ctx, lock.TokenAddress, now)
}

// Compute derives the token-level rollup at the given instant. Rows past
// their unlock date are excluded even if the sweep has not deactivated them
// yet.
func (t *Tracker) Compute(ctx context.Context, tokenAddress string, at time.Time) (Rollup, error) {
	rows, err := t.locks.GetByToken(ctx, tokenAddress)
	if err != nil {
		return Rollup{}, fmt.Errorf("get lp locks: %w", err)
	}

	var r Rollup
	r.LockPercent = decimal.Zero
	for _, l := range rows {
		if !l.Locked(at) {
			continue
		}
		r.Locked = true
		r.LockPercent = r.LockPercent.Add(l.LockedPercent)
		if r.UnlockDate == nil || l.UnlockDate.After(*r.UnlockDate) {
			unlock := l.UnlockDate
			r.UnlockDate = &unlock
		}
	}
	if r.LockPercent.GreaterThan(hundred) {
		r.LockPercent = hundred
	}
	return r, nil
}

// Sweep deactivates locks whose unlock date has passed and reports whether
// any transition happened. Callers recompute the rollup when it did.
func (t *Tracker) Sweep(ctx context.Context, tokenAddress string, at time.Time) (bool, error) {
	rows, err := t.locks.GetByToken(ctx, tokenAddress)
	if err != nil {
		return false, fmt.Errorf("get lp locks: %w", err)
	}

	changed := false
	for _, l := range rows {
		if !l.IsActive || !l.Expired(at) {
			continue
		}
		if err := t.locks.Deactivate(ctx, l.TokenAddress, l.PairAddress, l.LockContract); err != nil {
			return changed, fmt.Errorf("deactivate lp lock %s/%s: %w", l.TokenAddress, l.LockContract, err)
		}
		changed = true
	}
	return changed, nil
}
