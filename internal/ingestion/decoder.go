package ingestion

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"beanbee-engine/internal/domain"
)

// frame is the wire envelope for one normalized event. The listener/decoder
// upstream tags every message with its kind; timestamps are unix seconds.
type frame struct {
	Kind string `json:"kind"`

	TxHash        string `json:"tx_hash,omitempty"`
	LogIndex      int    `json:"log_index,omitempty"`
	BlockNumber   int64  `json:"block_number,omitempty"`
	Timestamp     int64  `json:"timestamp,omitempty"`
	PairAddress   string `json:"pair_address,omitempty"`
	TokenAddress  string `json:"token_address,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`

	// swap
	TradeType    string          `json:"trade_type,omitempty"`
	AmountTokens decimal.Decimal `json:"amount_tokens,omitempty"`
	AmountBNB    decimal.Decimal `json:"amount_bnb,omitempty"`
	AmountUSD    decimal.Decimal `json:"amount_usd,omitempty"`
	PriceUSD     decimal.Decimal `json:"price_usd,omitempty"`

	// reserve_update
	Reserve0 decimal.Decimal `json:"reserve0,omitempty"`
	Reserve1 decimal.Decimal `json:"reserve1,omitempty"`

	// lock
	LockContract     string          `json:"lock_contract,omitempty"`
	LockContractName string          `json:"lock_contract_name,omitempty"`
	LockedAmount     decimal.Decimal `json:"locked_amount,omitempty"`
	LockedPercent    decimal.Decimal `json:"locked_percent,omitempty"`
	LockDate         int64           `json:"lock_date,omitempty"`
	UnlockDate       int64           `json:"unlock_date,omitempty"`

	// holder_delta
	BalanceDelta decimal.Decimal `json:"balance_delta,omitempty"`

	// pair_created
	Token0Address  string          `json:"token0_address,omitempty"`
	Token1Address  string          `json:"token1_address,omitempty"`
	FactoryAddress string          `json:"factory_address,omitempty"`
	CreatorAddress string          `json:"creator_address,omitempty"`
	TokenName      string          `json:"token_name,omitempty"`
	TokenSymbol    string          `json:"token_symbol,omitempty"`
	TokenDecimals  int16           `json:"token_decimals,omitempty"`
	TotalSupply    decimal.Decimal `json:"total_supply,omitempty"`
}

// Decode parses one wire message into a domain event.
func Decode(data []byte) (domain.Event, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch domain.EventKind(f.Kind) {
	case domain.KindSwap:
		if f.TxHash == "" || f.TokenAddress == "" {
			return nil, fmt.Errorf("swap frame missing tx_hash or token_address")
		}
		return &domain.SwapEvent{
			TxHash:        f.TxHash,
			LogIndex:      f.LogIndex,
			BlockNumber:   f.BlockNumber,
			Timestamp:     time.Unix(f.Timestamp, 0).UTC(),
			PairAddress:   f.PairAddress,
			TokenAddress:  f.TokenAddress,
			WalletAddress: f.WalletAddress,
			TradeType:     f.TradeType,
			AmountTokens:  f.AmountTokens,
			AmountBNB:     f.AmountBNB,
			AmountUSD:     f.AmountUSD,
			PriceUSD:      f.PriceUSD,
		}, nil

	case domain.KindReserveUpdate:
		if f.PairAddress == "" {
			return nil, fmt.Errorf("reserve_update frame missing pair_address")
		}
		return &domain.ReserveUpdateEvent{
			PairAddress: f.PairAddress,
			Reserve0:    f.Reserve0,
			Reserve1:    f.Reserve1,
			BlockNumber: f.BlockNumber,
			Timestamp:   time.Unix(f.Timestamp, 0).UTC(),
		}, nil

	case domain.KindLock:
		if f.TokenAddress == "" && f.PairAddress == "" {
			return nil, fmt.Errorf("lock frame missing token_address and pair_address")
		}
		return &domain.LockEvent{
			TokenAddress:     f.TokenAddress,
			PairAddress:      f.PairAddress,
			LockContract:     f.LockContract,
			LockContractName: f.LockContractName,
			LockedAmount:     f.LockedAmount,
			LockedPercent:    f.LockedPercent,
			LockDate:         time.Unix(f.LockDate, 0).UTC(),
			UnlockDate:       time.Unix(f.UnlockDate, 0).UTC(),
			TxHash:           f.TxHash,
			BlockNumber:      f.BlockNumber,
		}, nil

	case domain.KindHolderDelta:
		if f.TokenAddress == "" || f.WalletAddress == "" {
			return nil, fmt.Errorf("holder_delta frame missing token_address or wallet_address")
		}
		return &domain.HolderDeltaEvent{
			TokenAddress:  f.TokenAddress,
			WalletAddress: f.WalletAddress,
			TxHash:        f.TxHash,
			BalanceDelta:  f.BalanceDelta,
			BlockNumber:   f.BlockNumber,
			Timestamp:     time.Unix(f.Timestamp, 0).UTC(),
		}, nil

	case domain.KindPairCreated:
		if f.PairAddress == "" || f.Token0Address == "" || f.Token1Address == "" {
			return nil, fmt.Errorf("pair_created frame missing addresses")
		}
		return &domain.PairCreatedEvent{
			PairAddress:    f.PairAddress,
			Token0Address:  f.Token0Address,
			Token1Address:  f.Token1Address,
			FactoryAddress: f.FactoryAddress,
			CreatorAddress: f.CreatorAddress,
			TokenName:      f.TokenName,
			TokenSymbol:    f.TokenSymbol,
			TokenDecimals:  f.TokenDecimals,
			TotalSupply:    f.TotalSupply,
			TxHash:         f.TxHash,
			BlockNumber:    f.BlockNumber,
			Timestamp:      time.Unix(f.Timestamp, 0).UTC(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown frame kind %q", f.Kind)
	}
}
