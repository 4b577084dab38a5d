package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade direction constants.
const (
	TradeBuy  = "buy"
	TradeSell = "sell"
)

// Swap is an immutable trade record.
// Natural key: (tx_hash, log_index), globally unique.
type Swap struct {
	TxHash        string
	LogIndex      int
	BlockNumber   int64
	Timestamp     time.Time
	PairAddress   string
	TokenAddress  string
	WalletAddress string
	TradeType     string // TradeBuy | TradeSell
	AmountTokens  decimal.Decimal
	AmountBNB     decimal.Decimal
	AmountUSD     decimal.Decimal
	PriceUSD      decimal.Decimal
	IsWhale       bool
	CreatedAt     time.Time
}

// IsBuy reports whether the swap bought the tracked token.
func (s *Swap) IsBuy() bool {
	return s.TradeType == TradeBuy
}
