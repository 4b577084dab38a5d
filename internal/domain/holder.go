package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenHolder is the current balance of a wallet in one token.
// Natural key: (token_address, wallet_address).
type TokenHolder struct {
	TokenAddress    string
	WalletAddress   string
	Balance         decimal.Decimal // raw integer units, never negative
	PercentOfSupply decimal.Decimal
	IsDev           bool
	IsSniper        bool
	IsContract      bool
	FirstBuyBlock   int64 // 0 until the first positive delta is observed
	LastUpdated     time.Time
}

// Holding reports whether the wallet currently holds a nonzero balance.
func (h *TokenHolder) Holding() bool {
	return h.Balance.IsPositive()
}
