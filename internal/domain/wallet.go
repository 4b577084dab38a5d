package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the aggregate identity of an address across tokens.
// Mutated by periodic recomputation, not by individual events.
type Wallet struct {
	Address           string
	Label             string
	TokenCount        int
	EstimatedValueUSD decimal.Decimal
	LastActivity      time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Wallet activity action tags.
const (
	ActionBuy         = "buy"
	ActionSell        = "sell"
	ActionTransferIn  = "transfer_in"
	ActionTransferOut = "transfer_out"
)

// WalletActivity is an immutable per-wallet action record.
// Natural key: (tx_hash, wallet_address, token_address, action).
type WalletActivity struct {
	TxHash        string
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	Action        string
	BlockNumber   int64
	Timestamp     time.Time
	AmountTokens  decimal.Decimal
	AmountUSD     decimal.Decimal
	CreatedAt     time.Time
}
