package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.WBNBAddress != DefaultWBNBAddress {
		t.Errorf("WBNBAddress = %s", cfg.WBNBAddress)
	}
	if !cfg.BNBPriceUSD.Equal(decimal.RequireFromString("600")) {
		t.Errorf("BNBPriceUSD = %s", cfg.BNBPriceUSD)
	}
	if !cfg.ScoreLiquidityLow.Equal(decimal.RequireFromString("10000")) ||
		!cfg.ScoreLiquidityMid.Equal(decimal.RequireFromString("50000")) ||
		!cfg.ScoreLiquidityHigh.Equal(decimal.RequireFromString("100000")) {
		t.Errorf("score tiers = %s/%s/%s", cfg.ScoreLiquidityLow, cfg.ScoreLiquidityMid, cfg.ScoreLiquidityHigh)
	}
	if cfg.AlertCooldown != time.Hour {
		t.Errorf("AlertCooldown = %s", cfg.AlertCooldown)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCORE_LIQUIDITY_LOW", "5000")
	t.Setenv("SCORE_LIQUIDITY_MID", "25000")
	t.Setenv("SCORE_LIQUIDITY_HIGH", "75000")
	t.Setenv("WHALE_THRESHOLD_USD", "2500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.ScoreLiquidityLow.Equal(decimal.RequireFromString("5000")) ||
		!cfg.ScoreLiquidityMid.Equal(decimal.RequireFromString("25000")) ||
		!cfg.ScoreLiquidityHigh.Equal(decimal.RequireFromString("75000")) {
		t.Errorf("score tiers = %s/%s/%s", cfg.ScoreLiquidityLow, cfg.ScoreLiquidityMid, cfg.ScoreLiquidityHigh)
	}
	if !cfg.WhaleThresholdUSD.Equal(decimal.RequireFromString("2500")) {
		t.Errorf("WhaleThresholdUSD = %s", cfg.WhaleThresholdUSD)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config should validate: %v", err)
	}
}

func TestValidate_RejectsUnorderedScoreTiers(t *testing.T) {
	t.Setenv("SCORE_LIQUIDITY_LOW", "50000")
	t.Setenv("SCORE_LIQUIDITY_MID", "10000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("descending liquidity tiers should fail validation")
	}
}

func TestValidate_RejectsBadThresholds(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"zero whale threshold", "WHALE_THRESHOLD_USD", "0"},
		{"negative bnb price", "BNB_PRICE_USD", "-1"},
		{"score above range", "HIGH_SCORE_THRESHOLD", "101"},
		{"zero workers", "WORKER_COUNT", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if err := cfg.Validate(); err == nil {
				t.Errorf("%s=%s should fail validation", tc.key, tc.value)
			}
		})
	}
}
