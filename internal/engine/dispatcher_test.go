package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

func newTestDispatcher(t *testing.T, h *testHarness, opts DispatcherOptions) *Dispatcher {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewDispatcher(h.applier, opts, nil, logrus.NewEntry(log))
}

func TestPartition_StableAndInRange(t *testing.T) {
	for _, key := range []string{"0xtoken", "0xother", "0xaaa", ""} {
		first := partition(key, 8)
		if first < 0 || first >= 8 {
			t.Fatalf("partition(%q) = %d, out of range", key, first)
		}
		for i := 0; i < 10; i++ {
			if got := partition(key, 8); got != first {
				t.Fatalf("partition(%q) = %d on repeat, want %d", key, got, first)
			}
		}
	}
}

// A swap and a reserve update for the same token must land on the same
// worker, even though one carries a token address and the other a pair.
func TestDispatcher_RoutesPairEventsByToken(t *testing.T) {
	h := newTestHarness(t)
	d := newTestDispatcher(t, h, DispatcherOptions{Workers: 4})
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := h.applier.Apply(ctx, swapEvent("0xaaa", 0, ts, "100")); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	swapKey, err := d.partitionKey(ctx, swapEvent("0xbbb", 0, ts, "100"))
	if err != nil {
		t.Fatalf("partitionKey(swap) failed: %v", err)
	}
	reserveKey, err := d.partitionKey(ctx, &domain.ReserveUpdateEvent{
		PairAddress: "0xpair",
		BlockNumber: 1001,
		Timestamp:   ts,
	})
	if err != nil {
		t.Fatalf("partitionKey(reserve) failed: %v", err)
	}
	if swapKey != reserveKey {
		t.Fatalf("partition keys differ: swap %q, reserve %q", swapKey, reserveKey)
	}
}

func TestDispatcher_UnknownPairParks(t *testing.T) {
	h := newTestHarness(t)
	d := newTestDispatcher(t, h, DispatcherOptions{Workers: 2})
	ctx := context.Background()

	ev := &domain.ReserveUpdateEvent{
		PairAddress: "0xnopair",
		BlockNumber: 1001,
		Timestamp:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := d.Enqueue(ctx, ev); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	d.mu.Lock()
	parked := len(d.pending["0xnopair"])
	d.mu.Unlock()
	if parked != 1 {
		t.Fatalf("parked events = %d, want 1", parked)
	}
}

// End to end through the worker pool: a parked reserve update is retried by
// the sweeper once the pair exists and ends up repricing the token.
func TestDispatcher_SweepRetriesParkedEvent(t *testing.T) {
	h := newTestHarness(t)
	d := newTestDispatcher(t, h, DispatcherOptions{
		Workers:       2,
		PendingMax:    50,
		SweepInterval: 10 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.Start(ctx)
	defer d.Stop()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reserve := &domain.ReserveUpdateEvent{
		PairAddress: "0xpair",
		Reserve0:    dec("10000000000000000000"),   // 10 WBNB
		Reserve1:    dec("4000000000000000000000"), // 4000 tokens
		BlockNumber: 1002,
		Timestamp:   ts.Add(time.Minute),
	}
	if err := d.Enqueue(ctx, reserve); err != nil {
		t.Fatalf("Enqueue(reserve) failed: %v", err)
	}

	pair := &domain.PairCreatedEvent{
		PairAddress:   "0xpair",
		Token0Address: testWBNB,
		Token1Address: "0xtoken",
		BlockNumber:   1000,
		Timestamp:     ts,
	}
	if err := d.Enqueue(ctx, pair); err != nil {
		t.Fatalf("Enqueue(pair) failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		token, err := h.tokens.GetByAddress(ctx, "0xtoken")
		if err == nil && token.PriceUSD.Equal(dec("1.5")) {
			return
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("GetByAddress failed: %v", err)
		}
		if time.Now().After(deadline) {
			t.Fatalf("token never repriced from parked reserve update")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
