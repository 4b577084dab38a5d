package holders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage/memory"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func testToken() *domain.Token {
	return &domain.Token{
		Address:        "0xtoken",
		CreatorAddress: "0xdev",
		BlockNumber:    1000,
		TotalSupply:    decimal.NewFromInt(1_000_000),
	}
}

func TestClassifier_ApplyDelta(t *testing.T) {
	store := memory.NewTokenHolderStore()
	c := NewClassifier(store, nil, 2, testLogger())
	ctx := context.Background()
	token := testToken()

	h, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
		TokenAddress:  "0xtoken",
		WalletAddress: "0xWALLET",
		BalanceDelta:  decimal.NewFromInt(50_000),
		BlockNumber:   1500,
		Timestamp:     time.Now(),
	})
	if err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}

	if h.WalletAddress != "0xwallet" {
		t.Errorf("wallet not normalized: %q", h.WalletAddress)
	}
	if !h.Balance.Equal(decimal.NewFromInt(50_000)) {
		t.Errorf("Balance = %s, want 50000", h.Balance)
	}
	if !h.PercentOfSupply.Equal(decimal.NewFromInt(5)) {
		t.Errorf("PercentOfSupply = %s, want 5", h.PercentOfSupply)
	}
	if h.FirstBuyBlock != 1500 {
		t.Errorf("FirstBuyBlock = %d, want 1500", h.FirstBuyBlock)
	}
	if h.IsSniper {
		t.Error("block 1500 is outside the sniper window")
	}
}

func TestClassifier_NegativeBalanceFloored(t *testing.T) {
	store := memory.NewTokenHolderStore()
	c := NewClassifier(store, nil, 2, testLogger())
	ctx := context.Background()
	token := testToken()

	_, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
		WalletAddress: "0xwallet",
		BalanceDelta:  decimal.NewFromInt(100),
		BlockNumber:   1500,
	})
	if err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}

	h, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
		WalletAddress: "0xwallet",
		BalanceDelta:  decimal.NewFromInt(-500),
		BlockNumber:   1501,
	})
	if err != nil {
		t.Fatalf("ApplyDelta with oversized negative delta should not fail: %v", err)
	}
	if !h.Balance.IsZero() {
		t.Errorf("Balance = %s, want floored to 0", h.Balance)
	}
}

func TestClassifier_DevAndSniperFlags(t *testing.T) {
	store := memory.NewTokenHolderStore()
	c := NewClassifier(store, nil, 2, testLogger())
	ctx := context.Background()
	token := testToken()

	h, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
		WalletAddress: "0xDEV",
		BalanceDelta:  decimal.NewFromInt(100_000),
		BlockNumber:   1001,
	})
	if err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}
	if !h.IsDev {
		t.Error("creator wallet should be flagged dev")
	}
	if !h.IsSniper {
		t.Error("first buy at creation+1 should be flagged sniper")
	}

	// Boundary: creation block + window is still a sniper, +window+1 is not.
	h2, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
		WalletAddress: "0xedge",
		BalanceDelta:  decimal.NewFromInt(100),
		BlockNumber:   1002,
	})
	if err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}
	if !h2.IsSniper {
		t.Error("first buy at creation+2 should be flagged sniper")
	}

	h3, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
		WalletAddress: "0xlate",
		BalanceDelta:  decimal.NewFromInt(100),
		BlockNumber:   1003,
	})
	if err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}
	if h3.IsSniper {
		t.Error("first buy at creation+3 should not be flagged sniper")
	}
}

func TestClassifier_ContractPredicate(t *testing.T) {
	store := memory.NewTokenHolderStore()
	c := NewClassifier(store, func(addr string) bool { return addr == "0xrouter" }, 2, testLogger())
	ctx := context.Background()
	token := testToken()

	h, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
		WalletAddress: "0xrouter",
		BalanceDelta:  decimal.NewFromInt(100),
		BlockNumber:   2000,
	})
	if err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}
	if !h.IsContract {
		t.Error("predicate match should flag contract")
	}
}

func TestClassifier_ComputeMetrics(t *testing.T) {
	store := memory.NewTokenHolderStore()
	c := NewClassifier(store, nil, 2, testLogger())
	ctx := context.Background()
	token := testToken()

	// Dev grabs 10% in the sniper window.
	if _, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
		WalletAddress: "0xdev",
		BalanceDelta:  decimal.NewFromInt(100_000),
		BlockNumber:   1001,
	}); err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}

	// Twelve ordinary holders with 1% each, later blocks.
	for i := 0; i < 12; i++ {
		if _, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
			WalletAddress: fmt.Sprintf("0xholder%02d", i),
			BalanceDelta:  decimal.NewFromInt(10_000),
			BlockNumber:   2000,
		}); err != nil {
			t.Fatalf("ApplyDelta failed: %v", err)
		}
	}

	// One wallet that sold out completely.
	if _, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
		WalletAddress: "0xgone",
		BalanceDelta:  decimal.NewFromInt(5_000),
		BlockNumber:   2000,
	}); err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}
	if _, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
		WalletAddress: "0xgone",
		BalanceDelta:  decimal.NewFromInt(-5_000),
		BlockNumber:   2001,
	}); err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}

	m, err := c.ComputeMetrics(ctx, token)
	if err != nil {
		t.Fatalf("ComputeMetrics failed: %v", err)
	}

	if m.HolderCount != 13 {
		t.Errorf("HolderCount = %d, want 13 (zero balance excluded)", m.HolderCount)
	}
	// Top 10 = dev (10%) + nine of the 1% holders.
	if !m.Top10Percent.Equal(decimal.NewFromInt(19)) {
		t.Errorf("Top10Percent = %s, want 19", m.Top10Percent)
	}
	if !m.DevHoldingsPercent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("DevHoldingsPercent = %s, want 10", m.DevHoldingsPercent)
	}
	// Sniper ratio is balance-weighted: 100k of 1M supply.
	if !m.SniperRatio.Equal(decimal.NewFromFloat(0.1)) {
		t.Errorf("SniperRatio = %s, want 0.1", m.SniperRatio)
	}
}

func TestClassifier_Top10TieBreakDeterministic(t *testing.T) {
	store := memory.NewTokenHolderStore()
	c := NewClassifier(store, nil, 2, testLogger())
	ctx := context.Background()
	token := testToken()

	// Eleven holders with identical balances; top-10 must be the ten
	// lexicographically smallest addresses, every run.
	for i := 0; i < 11; i++ {
		if _, err := c.ApplyDelta(ctx, token, &domain.HolderDeltaEvent{
			WalletAddress: fmt.Sprintf("0xsame%02d", i),
			BalanceDelta:  decimal.NewFromInt(10_000),
			BlockNumber:   2000,
		}); err != nil {
			t.Fatalf("ApplyDelta failed: %v", err)
		}
	}

	first, err := c.ComputeMetrics(ctx, token)
	if err != nil {
		t.Fatalf("ComputeMetrics failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := c.ComputeMetrics(ctx, token)
		if err != nil {
			t.Fatalf("ComputeMetrics failed: %v", err)
		}
		if !again.Top10Percent.Equal(first.Top10Percent) {
			t.Fatalf("Top10Percent not deterministic: %s vs %s", again.Top10Percent, first.Top10Percent)
		}
	}
	if !first.Top10Percent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Top10Percent = %s, want 10", first.Top10Percent)
	}
}
