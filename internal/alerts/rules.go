package alerts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"beanbee-engine/internal/domain"
)

// FilterPredicate is an externally supplied saved-filter check. It reports
// whether the token satisfies the filter and which filter matched.
type FilterPredicate func(t *domain.Token) (matched bool, filterID string)

// Rules are the alert thresholds. Immutable after construction.
type Rules struct {
	WhaleThresholdUSD   decimal.Decimal
	PumpThreshold1hPct  decimal.Decimal
	PumpThreshold24hPct decimal.Decimal
	HighScoreThreshold  int16
}

// Engine evaluates the rule set against state transitions and produces
// deduplicated AlertEvents. Stateless apart from the cooldown keeper.
type Engine struct {
	rules  Rules
	keeper *CooldownKeeper
	filter FilterPredicate // nil disables filter_match
}

// NewEngine creates an alert rule engine.
func NewEngine(rules Rules, keeper *CooldownKeeper, filter FilterPredicate) *Engine {
	return &Engine{rules: rules, keeper: keeper, filter: filter}
}

func (e *Engine) build(alertType domain.AlertType, token *domain.Token, condition string, at time.Time) *domain.AlertEvent {
	key := DedupKey(string(alertType), token.Address, condition, at, e.keeper.Cooldown())
	if !e.keeper.Allow(key, at) {
		return nil
	}
	return &domain.AlertEvent{
		CreatedAt:    at,
		AlertType:    alertType,
		TokenAddress: token.Address,
		TokenSymbol:  token.DisplaySymbol(),
		BeeScore:     token.BeeScore,
		DedupKey:     key,
	}
}

// OnNewToken fires on the first materialization of a token.
func (e *Engine) OnNewToken(token *domain.Token, at time.Time) *domain.AlertEvent {
	a := e.build(domain.AlertNewToken, token, "created", at)
	if a == nil {
		return nil
	}
	a.Title = fmt.Sprintf("New Token: %s", token.DisplaySymbol())
	a.Message = fmt.Sprintf("New token %s created on PancakeSwap at block %d", token.Address, token.BlockNumber)
	a.Metadata = domain.AlertMetadata{NewToken: &domain.NewTokenMeta{
		PairAddress: token.PairAddress,
		BlockNumber: token.BlockNumber,
	}}
	return a
}

// OnSwap fires whale_buy/whale_sell when the swap's USD amount crosses the
// whale threshold, and dev_sell when the seller is the token's creator.
func (e *Engine) OnSwap(token *domain.Token, swap *domain.Swap) []*domain.AlertEvent {
	var out []*domain.AlertEvent

	if swap.AmountUSD.GreaterThanOrEqual(e.rules.WhaleThresholdUSD) {
		alertType := domain.AlertWhaleSell
		verb := "Sell"
		if swap.IsBuy() {
			alertType = domain.AlertWhaleBuy
			verb = "Buy"
		}
		if a := e.build(alertType, token, swap.TxHash, swap.Timestamp); a != nil {
			a.WalletAddress = swap.WalletAddress
			a.AmountUSD = swap.AmountUSD
			a.Title = fmt.Sprintf("Whale %s: $%s %s", verb, swap.AmountUSD.Round(0), token.DisplaySymbol())
			a.Message = fmt.Sprintf("Wallet %s %s $%s of %s", swap.WalletAddress, verb, swap.AmountUSD.Round(2), token.DisplaySymbol())
			a.Metadata = domain.AlertMetadata{WhaleTrade: &domain.WhaleTradeMeta{
				AmountUSD: swap.AmountUSD,
				Wallet:    swap.WalletAddress,
				TxHash:    swap.TxHash,
			}}
			out = append(out, a)
		}
	}

	if !swap.IsBuy() && swap.WalletAddress == domain.NormalizeAddress(token.CreatorAddress) && token.CreatorAddress != "" {
		if a := e.build(domain.AlertDevSell, token, swap.TxHash, swap.Timestamp); a != nil {
			a.WalletAddress = swap.WalletAddress
			a.AmountUSD = swap.AmountUSD
			a.Title = fmt.Sprintf("Dev Sell: %s", token.DisplaySymbol())
			a.Message = fmt.Sprintf("Token creator sold %s %s at block %d", swap.AmountTokens, token.DisplaySymbol(), swap.BlockNumber)
			a.Metadata = domain.AlertMetadata{DevSell: &domain.DevSellMeta{
				AmountTokens: swap.AmountTokens,
				BlockNumber:  swap.BlockNumber,
			}}
			out = append(out, a)
		}
	}

	return out
}

// OnTokenUpdated fires rules that key off the delta between the previous and
// newly applied token state: upward price-pump crossings, the high-score
// crossing, and the external filter predicate.
func (e *Engine) OnTokenUpdated(prev, cur *domain.Token, at time.Time) []*domain.AlertEvent {
	var out []*domain.AlertEvent

	if a := e.pricePump(prev.PriceChange1h, cur.PriceChange1h, e.rules.PumpThreshold1hPct, "1h", cur, at); a != nil {
		out = append(out, a)
	}
	if a := e.pricePump(prev.PriceChange24h, cur.PriceChange24h, e.rules.PumpThreshold24hPct, "24h", cur, at); a != nil {
		out = append(out, a)
	}

	if prev.BeeScore < e.rules.HighScoreThreshold && cur.BeeScore >= e.rules.HighScoreThreshold {
		if a := e.build(domain.AlertHighBeeScore, cur, "high_score", at); a != nil {
			a.Title = fmt.Sprintf("High BeeScore: %s (%d)", cur.DisplaySymbol(), cur.BeeScore)
			a.Message = fmt.Sprintf("%s crossed BeeScore %d", cur.DisplaySymbol(), e.rules.HighScoreThreshold)
			a.Metadata = domain.AlertMetadata{HighScore: &domain.HighScoreMeta{Score: cur.BeeScore}}
			out = append(out, a)
		}
	}

	if e.filter != nil {
		if matched, filterID := e.filter(cur); matched {
			if a := e.build(domain.AlertFilterMatch, cur, "filter:"+filterID, at); a != nil {
				a.Title = fmt.Sprintf("Filter Match: %s", cur.DisplaySymbol())
				a.Message = fmt.Sprintf("%s now matches saved filter %s", cur.DisplaySymbol(), filterID)
				a.Metadata = domain.AlertMetadata{FilterMatch: &domain.FilterMatchMeta{FilterID: filterID}}
				out = append(out, a)
			}
		}
	}

	return out
}

// pricePump fires only on an upward crossing: the previous change was below
// the threshold (or undefined) and the new change is at or above it.
func (e *Engine) pricePump(prev, cur *decimal.Decimal, threshold decimal.Decimal, window string, token *domain.Token, at time.Time) *domain.AlertEvent {
	if cur == nil || cur.LessThan(threshold) {
		return nil
	}
	if prev != nil && prev.GreaterThanOrEqual(threshold) {
		return nil
	}
	a := e.build(domain.AlertPricePump, token, "pump:"+window, at)
	if a == nil {
		return nil
	}
	a.ChangePercent = *cur
	a.Title = fmt.Sprintf("Price Pump: %s +%s%% (%s)", token.DisplaySymbol(), cur.Round(1), window)
	a.Message = fmt.Sprintf("%s is up %s%% over the last %s", token.DisplaySymbol(), cur.Round(2), window)
	a.Metadata = domain.AlertMetadata{PricePump: &domain.PricePumpMeta{Percent: *cur, Window: window}}
	return a
}

// OnLock fires when a liquidity lock is recorded.
func (e *Engine) OnLock(token *domain.Token, lock *domain.LpLock, at time.Time) *domain.AlertEvent {
	a := e.build(domain.AlertLpLocked, token, lock.LockContract+"|"+lock.TxHash, at)
	if a == nil {
		return nil
	}
	days := int(lock.UnlockDate.Sub(lock.LockDate).Hours() / 24)
	a.ChangePercent = lock.LockedPercent
	a.Title = fmt.Sprintf("LP Locked: %s (%d days)", token.DisplaySymbol(), days)
	a.Message = fmt.Sprintf("LP tokens for %s locked on %s until %s",
		token.DisplaySymbol(), lock.LockContractName, lock.UnlockDate.Format("2006-01-02"))
	a.Metadata = domain.AlertMetadata{LpLocked: &domain.LpLockedMeta{
		LockContractName: lock.LockContractName,
		LockedPercent:    lock.LockedPercent,
		UnlockDate:       lock.UnlockDate,
	}}
	return a
}
