package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Well-known BSC addresses.
const (
	DefaultWBNBAddress = "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
	DefaultBUSDAddress = "0xe9e7cea3dedca5984780bafc599bd69add087d56"
)

// Config is an immutable snapshot taken at startup. Runtime components read
// from it but never mutate it.
type Config struct {
	// Storage
	PostgresDSN   string
	ClickHouseDSN string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Ingestion
	EventStreamURL string
	StreamQueueLen int

	// Base token resolution
	WBNBAddress string
	BUSDAddress string

	// Pricing. BNBPriceUSD is the fallback used when no external feed has
	// published a price yet.
	BNBPriceUSD decimal.Decimal

	// Thresholds
	WhaleThresholdUSD  decimal.Decimal
	SniperBlockWindow  int64
	PumpThreshold1hPct decimal.Decimal
	PumpThreshold24hPct decimal.Decimal
	HighScoreThreshold int16
	AlertCooldown      time.Duration

	// Score liquidity tiers. The calculator awards liquidity points in
	// bands; the bounds must be strictly ascending.
	ScoreLiquidityLow  decimal.Decimal
	ScoreLiquidityMid  decimal.Decimal
	ScoreLiquidityHigh decimal.Decimal

	// Engine
	WorkerCount        int
	WorkerQueueLen     int
	PersistMaxAttempts int
	PendingMaxRetries  int
	PendingTTL         time.Duration
	SnapshotBucket     time.Duration

	// Jobs
	WalletRecomputeSpec string
	HolderRollSpec      string
	LockSweepInterval   time.Duration

	// Observability
	MetricsAddr string
	LogLevel    string
}

// Load reads configuration from the environment, consulting a .env file when
// one is present. Missing optional keys fall back to defaults; validation of
// required keys is the caller's job via Validate.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickHouseDSN: os.Getenv("CLICKHOUSE_DSN"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		EventStreamURL: os.Getenv("EVENT_STREAM_URL"),
		StreamQueueLen: envInt("STREAM_QUEUE_LEN", 4096),

		WBNBAddress: strings.ToLower(envOr("WBNB_ADDRESS", DefaultWBNBAddress)),
		BUSDAddress: strings.ToLower(envOr("BUSD_ADDRESS", DefaultBUSDAddress)),

		BNBPriceUSD: envDecimal("BNB_PRICE_USD", "600"),

		WhaleThresholdUSD:   envDecimal("WHALE_THRESHOLD_USD", "5000"),
		SniperBlockWindow:   int64(envInt("SNIPER_BLOCK_WINDOW", 2)),
		PumpThreshold1hPct:  envDecimal("PUMP_THRESHOLD_1H_PCT", "50"),
		PumpThreshold24hPct: envDecimal("PUMP_THRESHOLD_24H_PCT", "100"),
		HighScoreThreshold:  int16(envInt("HIGH_SCORE_THRESHOLD", 80)),
		AlertCooldown:       envDuration("ALERT_COOLDOWN", time.Hour),

		ScoreLiquidityLow:  envDecimal("SCORE_LIQUIDITY_LOW", "10000"),
		ScoreLiquidityMid:  envDecimal("SCORE_LIQUIDITY_MID", "50000"),
		ScoreLiquidityHigh: envDecimal("SCORE_LIQUIDITY_HIGH", "100000"),

		WorkerCount:        envInt("WORKER_COUNT", 8),
		WorkerQueueLen:     envInt("WORKER_QUEUE_LEN", 1024),
		PersistMaxAttempts: envInt("PERSIST_MAX_ATTEMPTS", 5),
		PendingMaxRetries:  envInt("PENDING_MAX_RETRIES", 5),
		PendingTTL:         envDuration("PENDING_TTL", 2*time.Minute),
		SnapshotBucket:     envDuration("SNAPSHOT_BUCKET", 5*time.Minute),

		WalletRecomputeSpec: envOr("WALLET_RECOMPUTE_CRON", "*/10 * * * *"),
		HolderRollSpec:      envOr("HOLDER_ROLL_CRON", "0 * * * *"),
		LockSweepInterval:   envDuration("LOCK_SWEEP_INTERVAL", time.Minute),

		MetricsAddr: envOr("METRICS_ADDR", ":9090"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Validate rejects configurations that cannot produce correct results.
// Connection strings are allowed to be empty; the binary falls back to
// in-memory stores in that case.
func (c *Config) Validate() error {
	if !c.WhaleThresholdUSD.IsPositive() {
		return fmt.Errorf("WHALE_THRESHOLD_USD must be positive, got %s", c.WhaleThresholdUSD)
	}
	if c.SniperBlockWindow < 0 {
		return fmt.Errorf("SNIPER_BLOCK_WINDOW must be >= 0, got %d", c.SniperBlockWindow)
	}
	if !c.BNBPriceUSD.IsPositive() {
		return fmt.Errorf("BNB_PRICE_USD must be positive, got %s", c.BNBPriceUSD)
	}
	if c.HighScoreThreshold < 0 || c.HighScoreThreshold > 100 {
		return fmt.Errorf("HIGH_SCORE_THRESHOLD must be in [0,100], got %d", c.HighScoreThreshold)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be >= 1, got %d", c.WorkerCount)
	}
	if c.PersistMaxAttempts < 1 {
		return fmt.Errorf("PERSIST_MAX_ATTEMPTS must be >= 1, got %d", c.PersistMaxAttempts)
	}
	if c.PendingMaxRetries < 1 {
		return fmt.Errorf("PENDING_MAX_RETRIES must be >= 1, got %d", c.PendingMaxRetries)
	}
	if c.SnapshotBucket <= 0 {
		return fmt.Errorf("SNAPSHOT_BUCKET must be positive, got %s", c.SnapshotBucket)
	}
	if c.AlertCooldown <= 0 {
		return fmt.Errorf("ALERT_COOLDOWN must be positive, got %s", c.AlertCooldown)
	}
	if c.WBNBAddress == "" || c.BUSDAddress == "" {
		return fmt.Errorf("WBNB_ADDRESS and BUSD_ADDRESS must not be empty")
	}
	if !c.ScoreLiquidityLow.IsPositive() ||
		!c.ScoreLiquidityMid.GreaterThan(c.ScoreLiquidityLow) ||
		!c.ScoreLiquidityHigh.GreaterThan(c.ScoreLiquidityMid) {
		return fmt.Errorf("score liquidity tiers must be positive and ascending, got %s/%s/%s",
			c.ScoreLiquidityLow, c.ScoreLiquidityMid, c.ScoreLiquidityHigh)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envDecimal(key, def string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(def)
}
