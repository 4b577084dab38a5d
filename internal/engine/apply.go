package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"beanbee-engine/internal/alerts"
	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/holders"
	"beanbee-engine/internal/locks"
	"beanbee-engine/internal/observability"
	"beanbee-engine/internal/scoring"
	"beanbee-engine/internal/storage"
)

// Outcome of applying one event.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeDuplicate
)

// ApplierOptions are the immutable thresholds the apply pipeline keys off.
type ApplierOptions struct {
	WBNBAddress       string
	BUSDAddress       string
	BNBPriceUSD       decimal.Decimal
	WhaleThresholdUSD decimal.Decimal
	SnapshotBucket    time.Duration
}

// Applier runs the full pipeline for one event: dedup, state mutation,
// windowed aggregates, holder metrics, lock rollup, score, alert rules,
// persistence. Apply for a given token is only ever invoked from the worker
// owning that token, so all per-token computation is single-threaded; the
// window map itself is guarded for cross-partition lookups.
type Applier struct {
	opts       ApplierOptions
	gw         *Gateway
	classifier *holders.Classifier
	tracker    *locks.Tracker
	scorer     *scoring.Calculator
	rules      *alerts.Engine
	publisher  alerts.Publisher
	log        *logrus.Entry
	metrics    *observability.Metrics

	mu      sync.Mutex
	windows map[string]*Window
}

// NewApplier wires the pipeline. The classifier and tracker are expected to
// operate on the gateway-wrapped stores so every write is retried and
// timestamped in one place.
func NewApplier(
	opts ApplierOptions,
	gw *Gateway,
	classifier *holders.Classifier,
	tracker *locks.Tracker,
	scorer *scoring.Calculator,
	rules *alerts.Engine,
	publisher alerts.Publisher,
	metrics *observability.Metrics,
	log *logrus.Entry,
) *Applier {
	if publisher == nil {
		publisher = alerts.NopPublisher{}
	}
	return &Applier{
		opts:       opts,
		gw:         gw,
		classifier: classifier,
		tracker:    tracker,
		scorer:     scorer,
		rules:      rules,
		publisher:  publisher,
		metrics:    metrics,
		log:        log,
		windows:    make(map[string]*Window),
	}
}

// Apply processes one event to completion. Duplicate events are benign
// no-ops. Derived state is recomputed synchronously before returning, so an
// acknowledged event never leaves stale aggregates behind.
func (a *Applier) Apply(ctx context.Context, ev domain.Event) (Outcome, error) {
	switch e := ev.(type) {
	case *domain.PairCreatedEvent:
		return a.applyPairCreated(ctx, e)
	case *domain.SwapEvent:
		return a.applySwap(ctx, e)
	case *domain.ReserveUpdateEvent:
		return a.applyReserveUpdate(ctx, e)
	case *domain.LockEvent:
		return a.applyLock(ctx, e)
	case *domain.HolderDeltaEvent:
		return a.applyHolderDelta(ctx, e)
	case *domain.MaintenanceEvent:
		return a.applyMaintenance(ctx, e)
	default:
		return OutcomeDuplicate, fmt.Errorf("%w: unknown event kind %q", storage.ErrInvalidInput, ev.Kind())
	}
}

func (a *Applier) window(tokenAddress string) *Window {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, ok := a.windows[tokenAddress]
	if !ok {
		w = NewWindow()
		a.windows[tokenAddress] = w
	}
	return w
}

func (a *Applier) isBase(addr string) bool {
	return addr == a.opts.WBNBAddress || addr == a.opts.BUSDAddress
}

// launchTokenAddress picks the tracked (non-base) side of a new pair. Used
// both for materialization and for routing, so a launch and its follow-up
// events serialize behind the same worker.
func (a *Applier) launchTokenAddress(ev *domain.PairCreatedEvent) string {
	token0 := domain.NormalizeAddress(ev.Token0Address)
	token1 := domain.NormalizeAddress(ev.Token1Address)
	if a.isBase(token0) {
		return token1
	}
	return token0
}

func (a *Applier) applyPairCreated(ctx context.Context, ev *domain.PairCreatedEvent) (Outcome, error) {
	pairAddr := domain.NormalizeAddress(ev.PairAddress)
	token0 := domain.NormalizeAddress(ev.Token0Address)
	token1 := domain.NormalizeAddress(ev.Token1Address)

	baseIdx := domain.BaseTokenUnknown
	tokenAddr := token0
	switch {
	case a.isBase(token0):
		baseIdx = domain.BaseToken0
		tokenAddr = token1
	case a.isBase(token1):
		baseIdx = domain.BaseToken1
		tokenAddr = token0
	}

	if _, err := a.gw.Tokens.GetByAddress(ctx, tokenAddr); err == nil {
		a.log.WithField("token", tokenAddr).Debug("pair created replay, token already known")
		return OutcomeDuplicate, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return OutcomeDuplicate, err
	}

	pair := &domain.Pair{
		Address:        pairAddr,
		Token0Address:  token0,
		Token1Address:  token1,
		FactoryAddress: domain.NormalizeAddress(ev.FactoryAddress),
		Reserve0:       decimal.Zero,
		Reserve1:       decimal.Zero,
		BaseTokenIndex: baseIdx,
		BlockNumber:    ev.BlockNumber,
		CreatedAt:      ev.Timestamp,
	}
	if err := a.gw.Pairs.Upsert(ctx, pair); err != nil {
		return OutcomeDuplicate, err
	}

	token := &domain.Token{
		Address:        tokenAddr,
		Name:           ev.TokenName,
		Symbol:         ev.TokenSymbol,
		Decimals:       ev.TokenDecimals,
		TotalSupply:    ev.TotalSupply,
		PairAddress:    pairAddr,
		CreatorAddress: domain.NormalizeAddress(ev.CreatorAddress),
		BlockNumber:    ev.BlockNumber,
		CreatedAt:      ev.Timestamp,
		IndexedAt:      ev.Timestamp,
	}
	a.score(token)
	if err := a.gw.Tokens.Upsert(ctx, token); err != nil {
		return OutcomeDuplicate, err
	}
	if a.metrics != nil {
		a.metrics.TokensTracked.Inc()
	}

	a.emit(ctx, a.rules.OnNewToken(token, ev.Timestamp))
	return OutcomeApplied, nil
}

func (a *Applier) applySwap(ctx context.Context, ev *domain.SwapEvent) (Outcome, error) {
	tokenAddr := domain.NormalizeAddress(ev.TokenAddress)
	swap := &domain.Swap{
		TxHash:        ev.TxHash,
		LogIndex:      ev.LogIndex,
		BlockNumber:   ev.BlockNumber,
		Timestamp:     ev.Timestamp,
		PairAddress:   domain.NormalizeAddress(ev.PairAddress),
		TokenAddress:  tokenAddr,
		WalletAddress: domain.NormalizeAddress(ev.WalletAddress),
		TradeType:     ev.TradeType,
		AmountTokens:  ev.AmountTokens,
		AmountBNB:     ev.AmountBNB,
		AmountUSD:     ev.AmountUSD,
		PriceUSD:      ev.PriceUSD,
		IsWhale:       ev.AmountUSD.GreaterThanOrEqual(a.opts.WhaleThresholdUSD),
	}

	if err := a.gw.Swaps.Insert(ctx, swap); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			a.log.WithFields(logrus.Fields{"tx": ev.TxHash, "log_index": ev.LogIndex}).Debug("duplicate swap event")
			return OutcomeDuplicate, nil
		}
		return OutcomeDuplicate, err
	}

	newToken := false
	token, err := a.gw.Tokens.GetByAddress(ctx, tokenAddr)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// First sight of this token is a swap: materialize it from what the
		// event carries and alert the launch.
		newToken = true
		token = &domain.Token{
			Address:     tokenAddr,
			PairAddress: swap.PairAddress,
			BlockNumber: ev.BlockNumber,
			CreatedAt:   ev.Timestamp,
			IndexedAt:   ev.Timestamp,
		}
	case err != nil:
		return OutcomeDuplicate, err
	}
	prev := *token

	w := a.window(tokenAddr)
	w.AddSwap(ev.Timestamp, ev.AmountUSD, swap.IsBuy())
	w.AddPrice(ev.Timestamp, ev.PriceUSD)

	if ev.PriceUSD.IsPositive() {
		token.PriceUSD = ev.PriceUSD
		if a.opts.BNBPriceUSD.IsPositive() {
			token.PriceBNB = ev.PriceUSD.Div(a.opts.BNBPriceUSD)
		}
	}
	a.refreshWindowed(token, w, ev.Timestamp)

	if swap.IsBuy() {
		if err := a.classifier.RecordBuy(ctx, token, swap.WalletAddress, ev.BlockNumber); err != nil {
			return OutcomeDuplicate, err
		}
	}
	if err := a.refreshHolderMetrics(ctx, token); err != nil {
		return OutcomeDuplicate, err
	}

	a.score(token)
	if err := a.gw.Tokens.Upsert(ctx, token); err != nil {
		return OutcomeDuplicate, err
	}

	if err := a.ensureWallet(ctx, swap.WalletAddress, ev.Timestamp); err != nil {
		return OutcomeDuplicate, err
	}

	action := domain.ActionSell
	if swap.IsBuy() {
		action = domain.ActionBuy
	}
	activity := &domain.WalletActivity{
		TxHash:        swap.TxHash,
		WalletAddress: swap.WalletAddress,
		TokenAddress:  tokenAddr,
		TokenSymbol:   token.DisplaySymbol(),
		Action:        action,
		BlockNumber:   ev.BlockNumber,
		Timestamp:     ev.Timestamp,
		AmountTokens:  ev.AmountTokens,
		AmountUSD:     ev.AmountUSD,
	}
	// Two swap legs in one tx can share (tx, wallet, token, action); the
	// swap insert above is the dedup gate here, so an existing activity row
	// is fine.
	if err := a.gw.Activities.Insert(ctx, activity); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return OutcomeDuplicate, err
	}

	if err := a.writeSnapshot(ctx, token, ev.Timestamp); err != nil {
		return OutcomeDuplicate, err
	}

	if newToken {
		if a.metrics != nil {
			a.metrics.TokensTracked.Inc()
		}
		a.emit(ctx, a.rules.OnNewToken(token, ev.Timestamp))
	}
	a.emit(ctx, a.rules.OnSwap(token, swap)...)
	a.emit(ctx, a.rules.OnTokenUpdated(&prev, token, ev.Timestamp)...)

	return OutcomeApplied, nil
}

func (a *Applier) applyReserveUpdate(ctx context.Context, ev *domain.ReserveUpdateEvent) (Outcome, error) {
	pairAddr := domain.NormalizeAddress(ev.PairAddress)

	pair, err := a.gw.Pairs.GetByAddress(ctx, pairAddr)
	if errors.Is(err, storage.ErrNotFound) {
		return OutcomeDuplicate, &UnresolvedReferenceError{Kind: "pair", Identity: pairAddr}
	} else if err != nil {
		return OutcomeDuplicate, err
	}

	pair.Reserve0 = ev.Reserve0
	pair.Reserve1 = ev.Reserve1
	pair.BlockNumber = ev.BlockNumber
	if err := a.gw.Pairs.Upsert(ctx, pair); err != nil {
		return OutcomeDuplicate, err
	}

	token, err := a.gw.Tokens.GetByAddress(ctx, pair.TokenAddress())
	if errors.Is(err, storage.ErrNotFound) {
		return OutcomeDuplicate, &UnresolvedReferenceError{Kind: "token", Identity: pair.TokenAddress()}
	} else if err != nil {
		return OutcomeDuplicate, err
	}
	prev := *token

	a.reprice(token, pair)

	w := a.window(token.Address)
	w.AddPrice(ev.Timestamp, token.PriceUSD)
	a.refreshWindowed(token, w, ev.Timestamp)

	a.score(token)
	if err := a.gw.Tokens.Upsert(ctx, token); err != nil {
		return OutcomeDuplicate, err
	}
	if err := a.writeSnapshot(ctx, token, ev.Timestamp); err != nil {
		return OutcomeDuplicate, err
	}

	a.emit(ctx, a.rules.OnTokenUpdated(&prev, token, ev.Timestamp)...)
	return OutcomeApplied, nil
}

// reprice derives price and liquidity from pair reserves. Reserves arrive as
// raw integer units; the base leg is 18 decimals on BSC, the token leg uses
// its own decimals when known.
func (a *Applier) reprice(token *domain.Token, pair *domain.Pair) {
	tokenDecimals := int32(token.Decimals)
	if tokenDecimals == 0 {
		tokenDecimals = 18
	}
	baseReserve := pair.BaseReserve().Shift(-18)
	tokenReserve := pair.TokenReserve().Shift(-tokenDecimals)

	if !tokenReserve.IsPositive() {
		return
	}

	if pair.BaseAddress() == a.opts.BUSDAddress {
		token.PriceUSD = baseReserve.Div(tokenReserve)
		token.LiquidityUSD = baseReserve.Mul(decimal.NewFromInt(2))
		if a.opts.BNBPriceUSD.IsPositive() {
			token.PriceBNB = token.PriceUSD.Div(a.opts.BNBPriceUSD)
			token.LiquidityBNB = token.LiquidityUSD.Div(a.opts.BNBPriceUSD)
		}
		return
	}

	// WBNB base, or unknown treated as the native leg.
	token.PriceBNB = baseReserve.Div(tokenReserve)
	token.PriceUSD = token.PriceBNB.Mul(a.opts.BNBPriceUSD)
	token.LiquidityBNB = baseReserve.Mul(decimal.NewFromInt(2))
	token.LiquidityUSD = token.LiquidityBNB.Mul(a.opts.BNBPriceUSD)
}

func (a *Applier) applyLock(ctx context.Context, ev *domain.LockEvent) (Outcome, error) {
	tokenAddr := domain.NormalizeAddress(ev.TokenAddress)
	var token *domain.Token
	var err error
	if tokenAddr != "" {
		token, err = a.gw.Tokens.GetByAddress(ctx, tokenAddr)
	} else {
		// Locker events identify only the LP token, which is the pair.
		token, err = a.gw.Tokens.GetByPairAddress(ctx, domain.NormalizeAddress(ev.PairAddress))
	}
	if errors.Is(err, storage.ErrNotFound) {
		id := tokenAddr
		kind := "token"
		if id == "" {
			id = domain.NormalizeAddress(ev.PairAddress)
			kind = "pair"
		}
		return OutcomeDuplicate, &UnresolvedReferenceError{Kind: kind, Identity: id}
	} else if err != nil {
		return OutcomeDuplicate, err
	}
	prev := *token

	lockEv := *ev
	lockEv.TokenAddress = token.Address
	rollup, err := a.tracker.ApplyLock(ctx, &lockEv, ev.LockDate)
	if err != nil {
		return OutcomeDuplicate, err
	}

	a.applyLockRollup(token, rollup)
	a.score(token)
	if err := a.gw.Tokens.Upsert(ctx, token); err != nil {
		return OutcomeDuplicate, err
	}

	lockName := ev.LockContractName
	if lockName == "" {
		lockName = domain.LockerName(ev.LockContract)
	}
	lockView := &domain.LpLock{
		TokenAddress:     token.Address,
		PairAddress:      domain.NormalizeAddress(ev.PairAddress),
		LockContract:     domain.NormalizeAddress(ev.LockContract),
		LockContractName: lockName,
		LockedPercent:    ev.LockedPercent,
		LockDate:         ev.LockDate,
		UnlockDate:       ev.UnlockDate,
		TxHash:           ev.TxHash,
	}
	a.emit(ctx, a.rules.OnLock(token, lockView, ev.LockDate))
	a.emit(ctx, a.rules.OnTokenUpdated(&prev, token, ev.LockDate)...)

	return OutcomeApplied, nil
}

func (a *Applier) applyLockRollup(token *domain.Token, rollup locks.Rollup) {
	token.LPLocked = rollup.Locked
	token.LPLockPercent = rollup.LockPercent
	token.LPUnlockDate = rollup.UnlockDate
}

func (a *Applier) applyHolderDelta(ctx context.Context, ev *domain.HolderDeltaEvent) (Outcome, error) {
	wallet := domain.NormalizeAddress(ev.WalletAddress)
	tokenAddr := domain.NormalizeAddress(ev.TokenAddress)

	token, err := a.gw.Tokens.GetByAddress(ctx, tokenAddr)
	if errors.Is(err, storage.ErrNotFound) {
		return OutcomeDuplicate, &UnresolvedReferenceError{Kind: "token", Identity: tokenAddr}
	} else if err != nil {
		return OutcomeDuplicate, err
	}
	prev := *token

	action := domain.ActionTransferOut
	if ev.BalanceDelta.IsPositive() {
		action = domain.ActionTransferIn
	}
	activity := &domain.WalletActivity{
		TxHash:        ev.TxHash,
		WalletAddress: wallet,
		TokenAddress:  tokenAddr,
		TokenSymbol:   token.DisplaySymbol(),
		Action:        action,
		BlockNumber:   ev.BlockNumber,
		Timestamp:     ev.Timestamp,
		AmountTokens:  ev.BalanceDelta.Abs(),
	}
	// The activity row's natural key is the redelivery gate: it must be
	// written before any balance or supply mutation so a replayed delta
	// cannot apply twice.
	if err := a.gw.Activities.Insert(ctx, activity); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			a.log.WithFields(logrus.Fields{"tx": ev.TxHash, "wallet": wallet}).Debug("duplicate holder delta")
			return OutcomeDuplicate, nil
		}
		return OutcomeDuplicate, err
	}

	if domain.IsBurnAddress(wallet) {
		// A positive delta into the dead address is a burn; a negative delta
		// out of the zero address is a mint. Either way the wallet never
		// becomes a holder row, only the supply moves.
		token.TotalSupply = token.TotalSupply.Sub(ev.BalanceDelta)
		if token.TotalSupply.IsNegative() {
			token.TotalSupply = decimal.Zero
		}
		token.MarketCapUSD = token.PriceUSD.Mul(token.TotalSupply)
	} else {
		if _, err := a.classifier.ApplyDelta(ctx, token, ev); err != nil {
			return OutcomeDuplicate, err
		}
		if err := a.ensureWallet(ctx, wallet, ev.Timestamp); err != nil {
			return OutcomeDuplicate, err
		}
	}

	if err := a.refreshHolderMetrics(ctx, token); err != nil {
		return OutcomeDuplicate, err
	}
	a.score(token)
	if err := a.gw.Tokens.Upsert(ctx, token); err != nil {
		return OutcomeDuplicate, err
	}

	a.emit(ctx, a.rules.OnTokenUpdated(&prev, token, ev.Timestamp)...)
	return OutcomeApplied, nil
}

func (a *Applier) applyMaintenance(ctx context.Context, ev *domain.MaintenanceEvent) (Outcome, error) {
	token, err := a.gw.Tokens.GetByAddress(ctx, ev.TokenAddress)
	if errors.Is(err, storage.ErrNotFound) {
		return OutcomeDuplicate, &UnresolvedReferenceError{Kind: "token", Identity: ev.TokenAddress}
	} else if err != nil {
		return OutcomeDuplicate, err
	}

	switch ev.Task {
	case domain.MaintenanceLockSweep:
		changed, err := a.tracker.Sweep(ctx, token.Address, ev.AsOf)
		if err != nil {
			return OutcomeDuplicate, err
		}
		if !changed {
			return OutcomeDuplicate, nil
		}
		prev := *token
		rollup, err := a.tracker.Compute(ctx, token.Address, ev.AsOf)
		if err != nil {
			return OutcomeDuplicate, err
		}
		a.applyLockRollup(token, rollup)
		a.score(token)
		if err := a.gw.Tokens.Upsert(ctx, token); err != nil {
			return OutcomeDuplicate, err
		}
		a.emit(ctx, a.rules.OnTokenUpdated(&prev, token, ev.AsOf)...)
		return OutcomeApplied, nil

	case domain.MaintenanceHolderSnapshot:
		// Roll the 1h-ago holder count at the bucket boundary and persist a
		// chart snapshot.
		token.HolderCount1hAgo = token.HolderCount
		a.score(token)
		if err := a.gw.Tokens.Upsert(ctx, token); err != nil {
			return OutcomeDuplicate, err
		}
		if err := a.writeSnapshot(ctx, token, ev.AsOf); err != nil {
			return OutcomeDuplicate, err
		}
		return OutcomeApplied, nil

	default:
		return OutcomeDuplicate, fmt.Errorf("%w: unknown maintenance task %q", storage.ErrInvalidInput, ev.Task)
	}
}

func (a *Applier) refreshWindowed(token *domain.Token, w *Window, asOf time.Time) {
	agg1h := w.Aggregates(asOf, WindowHour)
	agg24h := w.Aggregates(asOf, WindowDay)

	token.Volume1hUSD = agg1h.VolumeUSD
	token.Trades1h = agg1h.Trades
	token.Buys1h = agg1h.Buys
	token.Sells1h = agg1h.Sells
	token.Volume24hUSD = agg24h.VolumeUSD
	token.Trades24h = agg24h.Trades
	token.Buys24h = agg24h.Buys
	token.Sells24h = agg24h.Sells

	token.PriceChange1h = w.PriceChange(asOf, WindowHour, token.PriceUSD)
	token.PriceChange24h = w.PriceChange(asOf, WindowDay, token.PriceUSD)

	if token.TotalSupply.IsPositive() {
		token.MarketCapUSD = token.PriceUSD.Mul(token.TotalSupply)
	}
}

// ensureWallet seeds the wallet row on first sight so the recompute job and
// the activity queries have an identity to attach to. Existing rows are left
// alone; the recompute job owns their aggregates.
func (a *Applier) ensureWallet(ctx context.Context, address string, seen time.Time) error {
	if address == "" || domain.IsBurnAddress(address) {
		return nil
	}
	_, err := a.gw.Wallets.GetByAddress(ctx, address)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return a.gw.Wallets.Upsert(ctx, &domain.Wallet{
		Address:      address,
		LastActivity: seen,
	})
}

func (a *Applier) refreshHolderMetrics(ctx context.Context, token *domain.Token) error {
	m, err := a.classifier.ComputeMetrics(ctx, token)
	if err != nil {
		return err
	}
	token.HolderCount = m.HolderCount
	token.Top10HolderPercent = m.Top10Percent
	token.DevHoldingsPercent = m.DevHoldingsPercent
	token.SniperRatio = m.SniperRatio
	return nil
}

func (a *Applier) score(token *domain.Token) {
	res := a.scorer.Calculate(scoring.InputsFromToken(token))
	token.SafetyScore = res.SafetyScore
	token.TractionScore = res.TractionScore
	token.BeeScore = res.Total
}

func (a *Applier) writeSnapshot(ctx context.Context, token *domain.Token, at time.Time) error {
	return a.gw.Snapshots.Insert(ctx, &domain.PriceSnapshot{
		TokenAddress: token.Address,
		Timestamp:    at.Truncate(a.opts.SnapshotBucket),
		PriceUSD:     token.PriceUSD,
		PriceBNB:     token.PriceBNB,
		LiquidityUSD: token.LiquidityUSD,
		VolumeUSD:    token.Volume1hUSD,
		MarketCapUSD: token.MarketCapUSD,
		HolderCount:  token.HolderCount,
	})
}

// emit persists and publishes alert events. A nil entry (deduped rule fire)
// is skipped. Publish failures are logged, not propagated: the durable row
// is already written.
func (a *Applier) emit(ctx context.Context, events ...*domain.AlertEvent) {
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if err := a.gw.Alerts.Insert(ctx, ev); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				// The cooldown keeper restarts empty; the dedup key column
				// catches the replays it no longer remembers.
				a.log.WithField("dedup_key", ev.DedupKey).Debug("alert already recorded")
				continue
			}
			a.log.WithError(err).WithField("alert_type", ev.AlertType).Error("failed to persist alert")
			continue
		}
		if a.metrics != nil {
			a.metrics.AlertsEmitted.WithLabelValues(string(ev.AlertType)).Inc()
		}
		if err := a.publisher.Publish(ctx, ev); err != nil {
			a.log.WithError(err).WithField("alert_type", ev.AlertType).Warn("failed to publish alert")
			continue
		}
		if a.metrics != nil {
			a.metrics.AlertsPublished.Inc()
		}
	}
}
