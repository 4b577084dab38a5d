package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LpLock records a liquidity lock for a token's pair.
// Natural key: (token_address, pair_address, lock_contract).
// Re-locking after expiry is modeled as a fresh row under the new lock
// contract identity; expired rows are kept for history.
type LpLock struct {
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
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Expired reports whether the lock's unlock date has passed at the given time.
func (l *LpLock) Expired(at time.Time) bool {
	return !l.UnlockDate.After(at)
}

// Locked reports whether the lock is currently in the Locked state:
// active and not yet past its unlock date.
func (l *LpLock) Locked(at time.Time) bool {
	return l.IsActive && !l.Expired(at)
}

// Known LP locker contracts on BSC.
const (
	LockerUnicrypt = "0xc765bddb93b0d1c1a88282ba0fa6b2d00e3e0c83"
	LockerPinkSale = "0x407993575c91ce7643a4d4ccacc9a98c36ee1bbe"
	LockerMudra    = "0xae34bd8a0d1153e51a11a59df23598c304dc5abc"
)

// LockerName maps a locker contract address to its well-known name.
func LockerName(address string) string {
	switch NormalizeAddress(address) {
	case LockerUnicrypt:
		return "unicrypt"
	case LockerPinkSale:
		return "pinksale"
	case LockerMudra:
		return "mudra"
	default:
		return "unknown"
	}
}
