package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventKind identifies a normalized event record type.
type EventKind string

const (
	KindSwap          EventKind = "swap"
	KindReserveUpdate EventKind = "reserve_update"
	KindLock          EventKind = "lock"
	KindHolderDelta   EventKind = "holder_delta"
	KindPairCreated   EventKind = "pair_created"
	KindMaintenance   EventKind = "maintenance"
)

// Event is a normalized on-chain event consumed from the listener/decoder.
// Delivery is at-least-once and ordered per source; NaturalKey identifies
// redeliveries of the same underlying log.
type Event interface {
	Kind() EventKind
	NaturalKey() string
}

// SwapEvent is a decoded DEX swap.
type SwapEvent struct {
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
}

func (e *SwapEvent) Kind() EventKind { return KindSwap }

func (e *SwapEvent) NaturalKey() string {
	return fmt.Sprintf("%s|%d", e.TxHash, e.LogIndex)
}

// ReserveUpdateEvent is a decoded pair Sync: both reserves after a
// reserve-changing transaction.
type ReserveUpdateEvent struct {
	PairAddress string
	Reserve0    decimal.Decimal
	Reserve1    decimal.Decimal
	BlockNumber int64
	Timestamp   time.Time
}

func (e *ReserveUpdateEvent) Kind() EventKind { return KindReserveUpdate }

func (e *ReserveUpdateEvent) NaturalKey() string {
	return fmt.Sprintf("%s|%d", e.PairAddress, e.BlockNumber)
}

// LockEvent is a decoded liquidity-lock creation from a locker contract.
type LockEvent struct {
	TokenAddress     string
	PairAddress      string
	LockContract     string
	LockContractName string
	LockedAmount     decimal.Decimal
	LockedPercent    decimal.Decimal
	LockDate         time.Time
	UnlockDate       time.Time
	TxHash           string
	BlockNumber      int64
}

func (e *LockEvent) Kind() EventKind { return KindLock }

func (e *LockEvent) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%s|%s", e.TokenAddress, e.PairAddress, e.LockContract, e.TxHash)
}

// HolderDeltaEvent is a decoded balance change for one wallet in one token.
// The delta is signed; application is an idempotent upsert of the holder row.
type HolderDeltaEvent struct {
	TokenAddress  string
	WalletAddress string
	TxHash        string
	BalanceDelta  decimal.Decimal
	BlockNumber   int64
	Timestamp     time.Time
}

func (e *HolderDeltaEvent) Kind() EventKind { return KindHolderDelta }

func (e *HolderDeltaEvent) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%s", e.TokenAddress, e.WalletAddress, e.TxHash)
}

// PairCreatedEvent is a decoded factory PairCreated log. It materializes the
// Token and Pair rows for a launch. The normalizer enriches it with the
// launched token's BEP-20 metadata; TotalSupply seeds every percent-of-supply
// metric and is adjusted afterwards by mint/burn holder deltas.
type PairCreatedEvent struct {
	PairAddress    string
	Token0Address  string
	Token1Address  string
	FactoryAddress string
	CreatorAddress string
	TokenName      string
	TokenSymbol    string
	TokenDecimals  int16
	TotalSupply    decimal.Decimal
	TxHash         string
	BlockNumber    int64
	Timestamp      time.Time
}

func (e *PairCreatedEvent) Kind() EventKind { return KindPairCreated }

func (e *PairCreatedEvent) NaturalKey() string { return e.PairAddress }

// Maintenance kinds routed through the per-token workers so that sweeps
// never race the event path for the same token.
const (
	MaintenanceLockSweep      = "lock_sweep"
	MaintenanceHolderSnapshot = "holder_snapshot"
)

// MaintenanceEvent is an engine-internal unit of per-token housekeeping.
type MaintenanceEvent struct {
	TokenAddress string
	Task         string // MaintenanceLockSweep | MaintenanceHolderSnapshot
	AsOf         time.Time
}

func (e *MaintenanceEvent) Kind() EventKind { return KindMaintenance }

func (e *MaintenanceEvent) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%d", e.TokenAddress, e.Task, e.AsOf.UnixMilli())
}
