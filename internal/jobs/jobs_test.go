package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage/memory"
)

type captureSink struct {
	events []domain.Event
}

func (s *captureSink) Enqueue(_ context.Context, ev domain.Event) error {
	s.events = append(s.events, ev)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func TestScheduler_SweepLocksEnqueuesPerToken(t *testing.T) {
	ctx := context.Background()
	tokens := memory.NewTokenStore()
	for _, addr := range []string{"0xaaa", "0xbbb"} {
		if err := tokens.Upsert(ctx, &domain.Token{Address: addr}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	sink := &captureSink{}
	s := NewScheduler(Options{}, tokens, memory.NewTokenHolderStore(),
		memory.NewWalletStore(), memory.NewWalletActivityStore(), sink, testLog())

	s.sweepLocks(ctx)

	if len(sink.events) != 2 {
		t.Fatalf("enqueued %d events, want 2", len(sink.events))
	}
	seen := map[string]bool{}
	for _, ev := range sink.events {
		m, ok := ev.(*domain.MaintenanceEvent)
		if !ok {
			t.Fatalf("enqueued %T, want *domain.MaintenanceEvent", ev)
		}
		if m.Task != domain.MaintenanceLockSweep {
			t.Errorf("task = %s", m.Task)
		}
		seen[m.TokenAddress] = true
	}
	if !seen["0xaaa"] || !seen["0xbbb"] {
		t.Errorf("tokens swept = %v", seen)
	}
}

func TestScheduler_RollHolderCountsEnqueuesSnapshots(t *testing.T) {
	ctx := context.Background()
	tokens := memory.NewTokenStore()
	if err := tokens.Upsert(ctx, &domain.Token{Address: "0xaaa"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	sink := &captureSink{}
	s := NewScheduler(Options{}, tokens, memory.NewTokenHolderStore(),
		memory.NewWalletStore(), memory.NewWalletActivityStore(), sink, testLog())

	s.rollHolderCounts(ctx)

	if len(sink.events) != 1 {
		t.Fatalf("enqueued %d events, want 1", len(sink.events))
	}
	m := sink.events[0].(*domain.MaintenanceEvent)
	if m.Task != domain.MaintenanceHolderSnapshot || m.TokenAddress != "0xaaa" {
		t.Errorf("event = %+v", m)
	}
}

func TestScheduler_RecomputeWallet(t *testing.T) {
	ctx := context.Background()
	tokens := memory.NewTokenStore()
	holders := memory.NewTokenHolderStore()
	wallets := memory.NewWalletStore()
	acts := memory.NewWalletActivityStore()

	if err := tokens.Upsert(ctx, &domain.Token{Address: "0xtoken1", PriceUSD: dec("2")}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := tokens.Upsert(ctx, &domain.Token{Address: "0xtoken2", PriceUSD: dec("0.5")}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := wallets.Upsert(ctx, &domain.Wallet{Address: "0xwallet"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	for _, h := range []*domain.TokenHolder{
		{TokenAddress: "0xtoken1", WalletAddress: "0xwallet", Balance: dec("100")},
		{TokenAddress: "0xtoken2", WalletAddress: "0xwallet", Balance: dec("40")},
		// Sold out: must not count toward token count or value.
		{TokenAddress: "0xtoken3", WalletAddress: "0xwallet", Balance: dec("0")},
	} {
		if err := holders.Upsert(ctx, h); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, a := range []*domain.WalletActivity{
		{TxHash: "0x1", WalletAddress: "0xwallet", TokenAddress: "0xtoken1", Action: domain.ActionBuy, Timestamp: last.Add(-time.Hour)},
		{TxHash: "0x2", WalletAddress: "0xwallet", TokenAddress: "0xtoken2", Action: domain.ActionBuy, Timestamp: last},
	} {
		if err := acts.Insert(ctx, a); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	s := NewScheduler(Options{}, tokens, holders, wallets, acts, &captureSink{}, testLog())
	s.recomputeWallets(ctx)

	wallet, err := wallets.GetByAddress(ctx, "0xwallet")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if wallet.TokenCount != 2 {
		t.Errorf("TokenCount = %d, want 2", wallet.TokenCount)
	}
	// 100*2 + 40*0.5 = 220
	if !wallet.EstimatedValueUSD.Equal(dec("220")) {
		t.Errorf("EstimatedValueUSD = %s, want 220", wallet.EstimatedValueUSD)
	}
	if !wallet.LastActivity.Equal(last) {
		t.Errorf("LastActivity = %v, want %v", wallet.LastActivity, last)
	}
}
