package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSnapshot is an immutable time-bucketed observation used for charting.
// Natural key: (token_address, timestamp). Written once per bucket.
type PriceSnapshot struct {
	TokenAddress string
	Timestamp    time.Time
	PriceUSD     decimal.Decimal
	PriceBNB     decimal.Decimal
	LiquidityUSD decimal.Decimal
	VolumeUSD    decimal.Decimal
	MarketCapUSD decimal.Decimal
	HolderCount  int
}
