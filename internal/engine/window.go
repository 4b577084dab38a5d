package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window durations.
const (
	WindowHour = time.Hour
	WindowDay  = 24 * time.Hour
)

type swapPoint struct {
	ts        time.Time
	amountUSD decimal.Decimal
	buy       bool
}

type pricePoint struct {
	ts    time.Time
	price decimal.Decimal
}

// WindowAggregates are the rolling metrics over one window.
type WindowAggregates struct {
	VolumeUSD decimal.Decimal
	Trades    int
	Buys      int
	Sells     int
}

// Window maintains a token's time-ordered swap and price observations for
// the 1h/24h rolling aggregates. Entries older than the widest window are
// evicted lazily, keyed off the latest event timestamp rather than the wall
// clock so replays are deterministic.
//
// Boundary rule: an entry is inside a window iff ts > asOf - window. An
// entry exactly at the boundary has aged out.
type Window struct {
	swaps    []swapPoint
	prices   []pricePoint
	latestTs time.Time
}

// NewWindow creates an empty window.
func NewWindow() *Window {
	return &Window{}
}

// LatestTs returns the newest event timestamp observed.
func (w *Window) LatestTs() time.Time {
	return w.latestTs
}

// AddSwap records a swap observation.
func (w *Window) AddSwap(ts time.Time, amountUSD decimal.Decimal, buy bool) {
	w.swaps = insertByTime(w.swaps, swapPoint{ts: ts, amountUSD: amountUSD, buy: buy},
		func(p swapPoint) time.Time { return p.ts })
	w.advance(ts)
}

// AddPrice records a price observation.
func (w *Window) AddPrice(ts time.Time, price decimal.Decimal) {
	if !price.IsPositive() {
		return
	}
	w.prices = insertByTime(w.prices, pricePoint{ts: ts, price: price},
		func(p pricePoint) time.Time { return p.ts })
	w.advance(ts)
}

func (w *Window) advance(ts time.Time) {
	if ts.After(w.latestTs) {
		w.latestTs = ts
	}
	w.evict()
}

// evict drops entries that have aged out of the widest window.
func (w *Window) evict() {
	cutoff := w.latestTs.Add(-WindowDay)
	for len(w.swaps) > 0 && !w.swaps[0].ts.After(cutoff) {
		w.swaps = w.swaps[1:]
	}
	for len(w.prices) > 0 && !w.prices[0].ts.After(cutoff) {
		w.prices = w.prices[1:]
	}
}

// Aggregates computes the rolling aggregates for one window as of the given
// instant.
func (w *Window) Aggregates(asOf time.Time, window time.Duration) WindowAggregates {
	boundary := asOf.Add(-window)
	agg := WindowAggregates{VolumeUSD: decimal.Zero}
	for _, p := range w.swaps {
		if !p.ts.After(boundary) {
			continue
		}
		agg.VolumeUSD = agg.VolumeUSD.Add(p.amountUSD)
		agg.Trades++
		if p.buy {
			agg.Buys++
		} else {
			agg.Sells++
		}
	}
	return agg
}

// PriceChange computes the percent change of currentPrice against the first
// price observation still inside the window. Returns nil when no baseline
// existed at the window start: a brand-new token has an undefined change,
// not a zero one.
func (w *Window) PriceChange(asOf time.Time, window time.Duration, currentPrice decimal.Decimal) *decimal.Decimal {
	boundary := asOf.Add(-window)
	for _, p := range w.prices {
		if !p.ts.After(boundary) {
			continue
		}
		// The baseline must predate the current observation; a token whose
		// only price point is the current one has no history to compare to.
		if !p.ts.Before(asOf) {
			return nil
		}
		if !p.price.IsPositive() {
			continue
		}
		change := currentPrice.Sub(p.price).Div(p.price).Mul(decimal.NewFromInt(100))
		return &change
	}
	return nil
}

// insertByTime keeps the slice ordered by timestamp. Points arrive almost
// always in order, so the scan from the tail is effectively O(1).
func insertByTime[T any](points []T, p T, ts func(T) time.Time) []T {
	i := len(points)
	for i > 0 && ts(points[i-1]).After(ts(p)) {
		i--
	}
	points = append(points, p)
	copy(points[i+1:], points[i:])
	points[i] = p
	return points
}
