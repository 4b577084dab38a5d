package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Token represents a BEP-20 token tracked by the engine.
// Corresponds to the tokens table in PostgreSQL.
type Token struct {
	Address        string // checksummed-insensitive, stored lowercase, unique
	Name           string
	Symbol         string
	Decimals       int16
	TotalSupply    decimal.Decimal
	PairAddress    string // primary trading pair
	CreatorAddress string
	BlockNumber    int64 // creation block
	CreatedAt      time.Time

	// Live metrics
	PriceUSD       decimal.Decimal
	PriceBNB       decimal.Decimal
	PriceChange1h  *decimal.Decimal // nil when no baseline existed at window start
	PriceChange24h *decimal.Decimal
	MarketCapUSD   decimal.Decimal
	LiquidityUSD   decimal.Decimal
	LiquidityBNB   decimal.Decimal
	Volume1hUSD    decimal.Decimal
	Volume24hUSD   decimal.Decimal
	Trades1h       int
	Trades24h      int
	Buys1h         int
	Sells1h        int
	Buys24h        int
	Sells24h       int

	// Holder metrics
	HolderCount        int
	HolderCount1hAgo   int
	Top10HolderPercent decimal.Decimal
	DevHoldingsPercent decimal.Decimal
	SniperRatio        decimal.Decimal

	// Safety flags
	LPLocked           bool
	LPLockPercent      decimal.Decimal
	LPUnlockDate       *time.Time
	OwnershipRenounced bool

	// Scores
	BeeScore      int16
	SafetyScore   int16
	TractionScore int16

	LastUpdated time.Time
	IndexedAt   time.Time
}

// ShortAddress returns a truncated address suitable for display when
// the token has no symbol yet.
func (t *Token) ShortAddress() string {
	if len(t.Address) >= 10 {
		return t.Address[:10]
	}
	return t.Address
}

// DisplaySymbol returns the symbol, falling back to a truncated address.
func (t *Token) DisplaySymbol() string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.ShortAddress()
}

// NormalizeAddress lowercases a hex address for use as a natural key.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Zero and dead addresses, used to detect mints and burns.
const (
	ZeroAddress = "0x0000000000000000000000000000000000000000"
	DeadAddress = "0x000000000000000000000000000000000000dead"
)

// IsBurnAddress reports whether transfers to addr destroy supply.
func IsBurnAddress(addr string) bool {
	a := NormalizeAddress(addr)
	return a == ZeroAddress || a == DeadAddress
}
