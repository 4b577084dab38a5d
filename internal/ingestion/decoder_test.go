package ingestion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"beanbee-engine/internal/domain"
)

func TestDecode_Swap(t *testing.T) {
	data := []byte(`{
		"kind": "swap",
		"tx_hash": "0xabc",
		"log_index": 3,
		"block_number": 1000,
		"timestamp": 1748779200,
		"pair_address": "0xpair",
		"token_address": "0xtoken",
		"wallet_address": "0xwallet",
		"trade_type": "buy",
		"amount_tokens": "1500.5",
		"amount_bnb": "0.25",
		"amount_usd": "150",
		"price_usd": "0.1"
	}`)

	ev, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	swap, ok := ev.(*domain.SwapEvent)
	if !ok {
		t.Fatalf("decoded %T, want *domain.SwapEvent", ev)
	}
	if swap.TxHash != "0xabc" || swap.LogIndex != 3 {
		t.Errorf("identity = %s/%d", swap.TxHash, swap.LogIndex)
	}
	if swap.TradeType != domain.TradeBuy {
		t.Errorf("trade type = %s", swap.TradeType)
	}
	if !swap.AmountUSD.Equal(decimal.RequireFromString("150")) {
		t.Errorf("amount usd = %s", swap.AmountUSD)
	}
	want := time.Unix(1748779200, 0).UTC()
	if !swap.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", swap.Timestamp, want)
	}
	if swap.NaturalKey() != "0xabc|3" {
		t.Errorf("natural key = %s", swap.NaturalKey())
	}
}

func TestDecode_ReserveUpdate(t *testing.T) {
	data := []byte(`{
		"kind": "reserve_update",
		"pair_address": "0xpair",
		"reserve0": "10000000000000000000",
		"reserve1": "4000000000000000000000",
		"block_number": 1001,
		"timestamp": 1748779260
	}`)

	ev, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	ru, ok := ev.(*domain.ReserveUpdateEvent)
	if !ok {
		t.Fatalf("decoded %T, want *domain.ReserveUpdateEvent", ev)
	}
	if ru.PairAddress != "0xpair" || ru.BlockNumber != 1001 {
		t.Errorf("decoded = %+v", ru)
	}
	if !ru.Reserve0.Equal(decimal.RequireFromString("10000000000000000000")) {
		t.Errorf("reserve0 = %s", ru.Reserve0)
	}
}

func TestDecode_Lock(t *testing.T) {
	data := []byte(`{
		"kind": "lock",
		"token_address": "0xtoken",
		"pair_address": "0xpair",
		"lock_contract": "0xlocker",
		"lock_contract_name": "TeamFinance",
		"locked_percent": "95.5",
		"lock_date": 1748779200,
		"unlock_date": 1756555200,
		"tx_hash": "0xlock"
	}`)

	ev, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	lock, ok := ev.(*domain.LockEvent)
	if !ok {
		t.Fatalf("decoded %T, want *domain.LockEvent", ev)
	}
	if !lock.LockedPercent.Equal(decimal.RequireFromString("95.5")) {
		t.Errorf("locked percent = %s", lock.LockedPercent)
	}
	if lock.LockContractName != "TeamFinance" {
		t.Errorf("lock contract name = %s", lock.LockContractName)
	}
	if !lock.UnlockDate.After(lock.LockDate) {
		t.Errorf("unlock %v not after lock %v", lock.UnlockDate, lock.LockDate)
	}
}

func TestDecode_HolderDelta(t *testing.T) {
	data := []byte(`{
		"kind": "holder_delta",
		"token_address": "0xtoken",
		"wallet_address": "0xwallet",
		"tx_hash": "0xtx",
		"balance_delta": "-250",
		"block_number": 1002,
		"timestamp": 1748779320
	}`)

	ev, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	delta, ok := ev.(*domain.HolderDeltaEvent)
	if !ok {
		t.Fatalf("decoded %T, want *domain.HolderDeltaEvent", ev)
	}
	if !delta.BalanceDelta.IsNegative() {
		t.Errorf("delta = %s, want negative", delta.BalanceDelta)
	}
}

func TestDecode_PairCreated(t *testing.T) {
	data := []byte(`{
		"kind": "pair_created",
		"pair_address": "0xpair",
		"token0_address": "0xwbnb",
		"token1_address": "0xtoken",
		"creator_address": "0xdev",
		"token_name": "Honey Token",
		"token_symbol": "HONEY",
		"token_decimals": 18,
		"total_supply": "1000000000",
		"tx_hash": "0xcreate",
		"block_number": 900,
		"timestamp": 1748779200
	}`)

	ev, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	pc, ok := ev.(*domain.PairCreatedEvent)
	if !ok {
		t.Fatalf("decoded %T, want *domain.PairCreatedEvent", ev)
	}
	if pc.CreatorAddress != "0xdev" {
		t.Errorf("creator = %s", pc.CreatorAddress)
	}
	if pc.TokenName != "Honey Token" || pc.TokenSymbol != "HONEY" || pc.TokenDecimals != 18 {
		t.Errorf("token metadata = %s/%s/%d", pc.TokenName, pc.TokenSymbol, pc.TokenDecimals)
	}
	if !pc.TotalSupply.Equal(decimal.RequireFromString("1000000000")) {
		t.Errorf("total supply = %s", pc.TotalSupply)
	}
}

func TestDecode_Invalid(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"malformed json", `{"kind": "swap",`},
		{"unknown kind", `{"kind": "burn"}`},
		{"swap without identity", `{"kind": "swap"}`},
		{"reserve update without pair", `{"kind": "reserve_update"}`},
		{"lock without subject", `{"kind": "lock", "tx_hash": "0x1"}`},
		{"holder delta without wallet", `{"kind": "holder_delta", "token_address": "0xt"}`},
		{"pair created without sides", `{"kind": "pair_created", "pair_address": "0xp"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode([]byte(tc.data)); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}
