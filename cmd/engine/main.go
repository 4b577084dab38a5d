// Package main runs the metrics aggregation and alert engine: it consumes the
// normalized event stream, maintains per-token analytics, and emits
// deduplicated alerts.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"beanbee-engine/internal/alerts"
	"beanbee-engine/internal/config"
	"beanbee-engine/internal/engine"
	"beanbee-engine/internal/holders"
	"beanbee-engine/internal/ingestion"
	"beanbee-engine/internal/jobs"
	"beanbee-engine/internal/locks"
	"beanbee-engine/internal/observability"
	"beanbee-engine/internal/scoring"
	chstore "beanbee-engine/internal/storage/clickhouse"
	"beanbee-engine/internal/storage/memory"
	"beanbee-engine/internal/storage/migrations"
	pgstore "beanbee-engine/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}
	log := logger.WithField("component", "engine")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals; a second signal forces immediate exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("initiating graceful shutdown")
		cancel()
		select {
		case sig := <-sigCh:
			log.WithField("signal", sig).Warn("forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("graceful shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}()

	metrics := observability.NewMetrics("")

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			log.WithField("addr", cfg.MetricsAddr).Info("starting metrics server")
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics server error")
			}
		}()
	}

	// Stores default to in-memory; connection strings switch individual
	// backends to their durable implementations.
	stores := engine.Stores{
		Tokens:     memory.NewTokenStore(),
		Pairs:      memory.NewPairStore(),
		Swaps:      memory.NewSwapStore(),
		Locks:      memory.NewLpLockStore(),
		Holders:    memory.NewTokenHolderStore(),
		Snapshots:  memory.NewSnapshotStore(),
		Wallets:    memory.NewWalletStore(),
		Activities: memory.NewWalletActivityStore(),
		Alerts:     memory.NewAlertStore(),
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			log.WithError(err).Fatal("failed to run postgres migrations")
		}

		stores.Tokens = pgstore.NewTokenStore(pool)
		stores.Pairs = pgstore.NewPairStore(pool)
		stores.Swaps = pgstore.NewSwapStore(pool)
		stores.Locks = pgstore.NewLpLockStore(pool)
		stores.Holders = pgstore.NewTokenHolderStore(pool)
		stores.Wallets = pgstore.NewWalletStore(pool)
		stores.Activities = pgstore.NewWalletActivityStore(pool)
		stores.Alerts = pgstore.NewAlertStore(pool)
		log.Info("using postgres storage")
	}

	if cfg.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			log.WithError(err).Fatal("failed to run clickhouse migrations")
		}
		defer conn.Close()

		stores.Snapshots = chstore.NewSnapshotStore(conn)
		log.Info("using clickhouse snapshot storage")
	}

	// Alert delivery is best effort: an unreachable Redis degrades to
	// store-only alerts instead of blocking startup.
	var publisher alerts.Publisher = alerts.NopPublisher{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.WithError(err).Warn("redis unreachable, alert publishing disabled")
			client.Close()
		} else {
			defer client.Close()
			publisher = alerts.NewRedisPublisher(client, "")
			log.WithField("addr", cfg.RedisAddr).Info("publishing alerts to redis")
		}
	}

	gw := engine.NewGateway(stores, engine.GatewayOptions{
		MaxAttempts: cfg.PersistMaxAttempts,
		Log:         logger.WithField("component", "gateway"),
		Metrics:     metrics,
	})

	classifier := holders.NewClassifier(gw.Holders, nil, cfg.SniperBlockWindow,
		logger.WithField("component", "classifier"))
	tracker := locks.NewTracker(gw.Locks)
	scorer := scoring.NewCalculator(scoring.Thresholds{
		LiquidityLow:  cfg.ScoreLiquidityLow,
		LiquidityMid:  cfg.ScoreLiquidityMid,
		LiquidityHigh: cfg.ScoreLiquidityHigh,
	})
	ruleEngine := alerts.NewEngine(alerts.Rules{
		WhaleThresholdUSD:   cfg.WhaleThresholdUSD,
		PumpThreshold1hPct:  cfg.PumpThreshold1hPct,
		PumpThreshold24hPct: cfg.PumpThreshold24hPct,
		HighScoreThreshold:  cfg.HighScoreThreshold,
	}, alerts.NewCooldownKeeper(cfg.AlertCooldown), nil)

	applier := engine.NewApplier(engine.ApplierOptions{
		WBNBAddress:       cfg.WBNBAddress,
		BUSDAddress:       cfg.BUSDAddress,
		BNBPriceUSD:       cfg.BNBPriceUSD,
		WhaleThresholdUSD: cfg.WhaleThresholdUSD,
		SnapshotBucket:    cfg.SnapshotBucket,
	}, gw, classifier, tracker, scorer, ruleEngine, publisher, metrics,
		logger.WithField("component", "applier"))

	dispatcher := engine.NewDispatcher(applier, engine.DispatcherOptions{
		Workers:    cfg.WorkerCount,
		QueueLen:   cfg.WorkerQueueLen,
		PendingMax: cfg.PendingMaxRetries,
		PendingTTL: cfg.PendingTTL,
	}, metrics, logger.WithField("component", "dispatcher"))
	dispatcher.Start(ctx)

	scheduler := jobs.NewScheduler(jobs.Options{
		WalletRecomputeSpec: cfg.WalletRecomputeSpec,
		HolderRollSpec:      cfg.HolderRollSpec,
		LockSweepInterval:   cfg.LockSweepInterval,
	}, gw.Tokens, gw.Holders, gw.Wallets, gw.Activities, dispatcher,
		logger.WithField("component", "jobs"))
	if err := scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}

	if cfg.EventStreamURL != "" {
		source := ingestion.NewWSSource(cfg.EventStreamURL, nil, dispatcher, metrics,
			logger.WithField("component", "stream"))
		go func() {
			if err := source.Run(ctx); err != nil {
				log.WithError(err).Error("stream source stopped")
			}
		}()
		log.WithField("endpoint", cfg.EventStreamURL).Info("consuming event stream")
	} else {
		log.Warn("EVENT_STREAM_URL not set, running without live ingestion")
	}

	log.Info("engine started")
	<-ctx.Done()

	scheduler.Stop()
	dispatcher.Stop()
	log.Info("shutdown complete")
}
