package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Base token index values for Pair.BaseTokenIndex.
const (
	BaseTokenUnknown int16 = -1
	BaseToken0       int16 = 0
	BaseToken1       int16 = 1
)

// Pair represents a DEX trading pair of two tokens plus its reserves.
// Corresponds to the pairs table in PostgreSQL.
type Pair struct {
	Address        string // stored lowercase, unique
	Token0Address  string
	Token1Address  string
	FactoryAddress string
	Reserve0       decimal.Decimal // raw integer reserve, 10^decimals scale
	Reserve1       decimal.Decimal
	BaseTokenIndex int16 // which side is WBNB/BUSD; BaseTokenUnknown if undetermined
	BlockNumber    int64
	CreatedAt      time.Time
	LastUpdated    time.Time
}

// TokenAddress returns the non-base token of the pair (the tracked token).
func (p *Pair) TokenAddress() string {
	switch p.BaseTokenIndex {
	case BaseToken0:
		return p.Token1Address
	case BaseToken1:
		return p.Token0Address
	default:
		return p.Token0Address
	}
}

// BaseAddress returns the base-asset side of the pair (WBNB/BUSD).
func (p *Pair) BaseAddress() string {
	switch p.BaseTokenIndex {
	case BaseToken0:
		return p.Token0Address
	case BaseToken1:
		return p.Token1Address
	default:
		return p.Token1Address
	}
}

// BaseReserve returns the reserve on the base-asset side.
func (p *Pair) BaseReserve() decimal.Decimal {
	switch p.BaseTokenIndex {
	case BaseToken0:
		return p.Reserve0
	case BaseToken1:
		return p.Reserve1
	default:
		return p.Reserve1
	}
}

// TokenReserve returns the reserve on the tracked-token side.
func (p *Pair) TokenReserve() decimal.Decimal {
	switch p.BaseTokenIndex {
	case BaseToken0:
		return p.Reserve1
	case BaseToken1:
		return p.Reserve0
	default:
		return p.Reserve0
	}
}
