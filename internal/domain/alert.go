package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AlertType tags an emitted alert event.
type AlertType string

// Alert types. price_dump and lp_unlocking are part of the taxonomy consumed
// by the delivery subsystem but are not emitted by this engine.
const (
	AlertNewToken     AlertType = "new_token"
	AlertWhaleBuy     AlertType = "whale_buy"
	AlertWhaleSell    AlertType = "whale_sell"
	AlertPricePump    AlertType = "price_pump"
	AlertPriceDump    AlertType = "price_dump"
	AlertLpLocked     AlertType = "lp_locked"
	AlertLpUnlocking  AlertType = "lp_unlocking"
	AlertHighBeeScore AlertType = "high_bee_score"
	AlertDevSell      AlertType = "dev_sell"
	AlertFilterMatch  AlertType = "filter_match"
)

// AlertEvent is an immutable notification record. The processed flag and
// processed_at are owned exclusively by the external delivery subsystem.
type AlertEvent struct {
	ID            int64
	CreatedAt     time.Time
	AlertType     AlertType
	TokenAddress  string
	TokenSymbol   string
	WalletAddress string
	Title         string
	Message       string
	BeeScore      int16
	AmountUSD     decimal.Decimal
	ChangePercent decimal.Decimal
	Metadata      AlertMetadata
	DedupKey      string // natural key: (type, subject, condition, time bucket)
	Processed     bool
	ProcessedAt   *time.Time
}

// AlertMetadata is the closed set of per-type payload variants. Exactly one
// field is set; serialization to JSON happens only at the persistence boundary.
type AlertMetadata struct {
	NewToken    *NewTokenMeta    `json:"new_token,omitempty"`
	WhaleTrade  *WhaleTradeMeta  `json:"whale_trade,omitempty"`
	PricePump   *PricePumpMeta   `json:"price_pump,omitempty"`
	HighScore   *HighScoreMeta   `json:"high_score,omitempty"`
	DevSell     *DevSellMeta     `json:"dev_sell,omitempty"`
	LpLocked    *LpLockedMeta    `json:"lp_locked,omitempty"`
	FilterMatch *FilterMatchMeta `json:"filter_match,omitempty"`
}

// NewTokenMeta accompanies new_token alerts.
type NewTokenMeta struct {
	PairAddress string `json:"pair_address"`
	BlockNumber int64  `json:"block_number"`
}

// WhaleTradeMeta accompanies whale_buy/whale_sell alerts.
type WhaleTradeMeta struct {
	AmountUSD decimal.Decimal `json:"amount_usd"`
	Wallet    string          `json:"wallet"`
	TxHash    string          `json:"tx_hash"`
}

// PricePumpMeta accompanies price_pump alerts.
type PricePumpMeta struct {
	Percent decimal.Decimal `json:"percent"`
	Window  string          `json:"window"` // "1h" | "24h"
}

// HighScoreMeta accompanies high_bee_score alerts.
type HighScoreMeta struct {
	Score int16 `json:"score"`
}

// DevSellMeta accompanies dev_sell alerts.
type DevSellMeta struct {
	AmountTokens decimal.Decimal `json:"amount_tokens"`
	BlockNumber  int64           `json:"block_number"`
}

// LpLockedMeta accompanies lp_locked alerts.
type LpLockedMeta struct {
	LockContractName string          `json:"lock_contract_name"`
	LockedPercent    decimal.Decimal `json:"locked_percent"`
	UnlockDate       time.Time       `json:"unlock_date"`
}

// FilterMatchMeta accompanies filter_match alerts.
type FilterMatchMeta struct {
	FilterID string `json:"filter_id"`
}

// Empty reports whether no variant is set.
func (m AlertMetadata) Empty() bool {
	return m.NewToken == nil && m.WhaleTrade == nil && m.PricePump == nil &&
		m.HighScore == nil && m.DevSell == nil && m.LpLocked == nil && m.FilterMatch == nil
}

// MarshalBoundary serializes the metadata for the durable store. Returns nil
// for an empty payload so the column stays NULL.
func (m AlertMetadata) MarshalBoundary() ([]byte, error) {
	if m.Empty() {
		return nil, nil
	}
	return json.Marshal(m)
}

// UnmarshalBoundary restores metadata read back from the durable store.
func (m *AlertMetadata) UnmarshalBoundary(data []byte) error {
	if len(data) == 0 {
		*m = AlertMetadata{}
		return nil
	}
	return json.Unmarshal(data, m)
}
