package locks

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage/memory"
)

func TestTracker_ApplyLockRollup(t *testing.T) {
	store := memory.NewLpLockStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	unlock := now.Add(90 * 24 * time.Hour)

	rollup, err := tracker.ApplyLock(ctx, &domain.LockEvent{
		TokenAddress:  "0xtoken",
		PairAddress:   "0xpair",
		LockContract:  domain.LockerPinkSale,
		LockedAmount:  decimal.NewFromInt(1000),
		LockedPercent: decimal.NewFromInt(95),
		LockDate:      now,
		UnlockDate:    unlock,
		TxHash:        "0xabc",
		BlockNumber:   100,
	}, now)
	if err != nil {
		t.Fatalf("ApplyLock failed: %v", err)
	}

	if !rollup.Locked {
		t.Error("expected Locked after lock event")
	}
	if !rollup.LockPercent.Equal(decimal.NewFromInt(95)) {
		t.Errorf("LockPercent = %s, want 95", rollup.LockPercent)
	}
	if rollup.UnlockDate == nil || !rollup.UnlockDate.Equal(unlock) {
		t.Errorf("UnlockDate = %v, want %v", rollup.UnlockDate, unlock)
	}

	locks, err := store.GetByToken(ctx, "0xtoken")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(locks) != 1 {
		t.Fatalf("expected 1 lock row, got %d", len(locks))
	}
	if locks[0].LockContractName != "pinksale" {
		t.Errorf("LockContractName = %q, want pinksale", locks[0].LockContractName)
	}
}

func TestTracker_SumCappedAt100(t *testing.T) {
	store := memory.NewLpLockStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, contract := range []string{domain.LockerUnicrypt, domain.LockerMudra} {
		_, err := tracker.ApplyLock(ctx, &domain.LockEvent{
			TokenAddress:  "0xtoken",
			PairAddress:   "0xpair",
			LockContract:  contract,
			LockedPercent: decimal.NewFromInt(60),
			LockDate:      now,
			UnlockDate:    now.Add(time.Hour),
			TxHash:        "0xabc",
			BlockNumber:   int64(100 + i),
		}, now)
		if err != nil {
			t.Fatalf("ApplyLock failed: %v", err)
		}
	}

	rollup, err := tracker.Compute(ctx, "0xtoken", now)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !rollup.LockPercent.Equal(decimal.NewFromInt(100)) {
		t.Errorf("LockPercent = %s, want capped 100", rollup.LockPercent)
	}
}

func TestTracker_ExpiryExcludedLazily(t *testing.T) {
	store := memory.NewLpLockStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := tracker.ApplyLock(ctx, &domain.LockEvent{
		TokenAddress:  "0xtoken",
		PairAddress:   "0xpair",
		LockContract:  domain.LockerUnicrypt,
		LockedPercent: decimal.NewFromInt(80),
		LockDate:      now,
		UnlockDate:    now.Add(time.Hour),
		TxHash:        "0xabc",
	}, now)
	if err != nil {
		t.Fatalf("ApplyLock failed: %v", err)
	}

	// Past the unlock date the rollup excludes the lock even before a sweep.
	later := now.Add(2 * time.Hour)
	rollup, err := tracker.Compute(ctx, "0xtoken", later)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if rollup.Locked {
		t.Error("expected unlocked rollup after unlock date")
	}
	if !rollup.LockPercent.IsZero() {
		t.Errorf("LockPercent = %s, want 0", rollup.LockPercent)
	}
	if rollup.UnlockDate != nil {
		t.Errorf("UnlockDate = %v, want nil", rollup.UnlockDate)
	}
}

func TestTracker_SweepDeactivates(t *testing.T) {
	store := memory.NewLpLockStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := tracker.ApplyLock(ctx, &domain.LockEvent{
		TokenAddress:  "0xtoken",
		PairAddress:   "0xpair",
		LockContract:  domain.LockerUnicrypt,
		LockedPercent: decimal.NewFromInt(80),
		LockDate:      now,
		UnlockDate:    now.Add(time.Hour),
		TxHash:        "0xabc",
	}, now)
	if err != nil {
		t.Fatalf("ApplyLock failed: %v", err)
	}

	changed, err := tracker.Sweep(ctx, "0xtoken", now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if changed {
		t.Error("sweep before expiry should not change anything")
	}

	changed, err = tracker.Sweep(ctx, "0xtoken", now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if !changed {
		t.Error("sweep after expiry should deactivate the lock")
	}

	rows, err := store.GetByToken(ctx, "0xtoken")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(rows) != 1 || rows[0].IsActive {
		t.Error("expected the lock row deactivated but kept for history")
	}
}

func TestTracker_RelockAfterExpiry(t *testing.T) {
	store := memory.NewLpLockStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := tracker.ApplyLock(ctx, &domain.LockEvent{
		TokenAddress:  "0xtoken",
		PairAddress:   "0xpair",
		LockContract:  domain.LockerUnicrypt,
		LockedPercent: decimal.NewFromInt(80),
		LockDate:      now,
		UnlockDate:    now.Add(time.Hour),
		TxHash:        "0xabc",
	}, now)
	if err != nil {
		t.Fatalf("ApplyLock failed: %v", err)
	}

	later := now.Add(3 * time.Hour)
	if _, err := tracker.Sweep(ctx, "0xtoken", later); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	rollup, err := tracker.ApplyLock(ctx, &domain.LockEvent{
		TokenAddress:  "0xtoken",
		PairAddress:   "0xpair",
		LockContract:  domain.LockerPinkSale,
		LockedPercent: decimal.NewFromInt(90),
		LockDate:      later,
		UnlockDate:    later.Add(24 * time.Hour),
		TxHash:        "0xdef",
	}, later)
	if err != nil {
		t.Fatalf("ApplyLock failed: %v", err)
	}

	if !rollup.Locked || !rollup.LockPercent.Equal(decimal.NewFromInt(90)) {
		t.Errorf("rollup after relock = %+v, want locked at 90%%", rollup)
	}

	rows, err := store.GetByToken(ctx, "0xtoken")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 lock rows (history preserved), got %d", len(rows))
	}
}
