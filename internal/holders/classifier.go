package holders

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/storage"
)

// ContractPredicate reports whether an address is a contract. Bytecode
// inspection lives outside this engine; the predicate is injected.
type ContractPredicate func(address string) bool

// Metrics are the token-level holder aggregates.
type Metrics struct {
	HolderCount        int
	Top10Percent       decimal.Decimal
	DevHoldingsPercent decimal.Decimal
	SniperRatio        decimal.Decimal // fraction of total supply held by snipers, 0..1
}

// Classifier maintains per-token holder balances and wallet classifications.
type Classifier struct {
	holders      storage.TokenHolderStore
	isContract   ContractPredicate
	sniperWindow int64 // blocks after creation within which a first buy marks a sniper
	log          *logrus.Entry
}

// NewClassifier creates a classifier. A nil predicate classifies nothing as
// a contract.
func NewClassifier(holders storage.TokenHolderStore, isContract ContractPredicate, sniperWindow int64, log *logrus.Entry) *Classifier {
	if isContract == nil {
		isContract = func(string) bool { return false }
	}
	return &Classifier{
		holders:      holders,
		isContract:   isContract,
		sniperWindow: sniperWindow,
		log:          log,
	}
}

// ApplyDelta applies a signed balance change and upserts the holder row.
// A delta that would drive the balance negative is floored at zero and
// reported as a data inconsistency, not a failure.
func (c *Classifier) ApplyDelta(ctx context.Context, token *domain.Token, ev *domain.HolderDeltaEvent) (*domain.TokenHolder, error) {
	wallet := domain.NormalizeAddress(ev.WalletAddress)

	holder, err := c.holders.Get(ctx, token.Address, wallet)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		holder = &domain.TokenHolder{
			TokenAddress:  token.Address,
			WalletAddress: wallet,
			Balance:       decimal.Zero,
		}
	case err != nil:
		return nil, fmt.Errorf("get holder: %w", err)
	}

	newBalance := holder.Balance.Add(ev.BalanceDelta)
	if newBalance.IsNegative() {
		c.log.WithFields(logrus.Fields{
			"token":   token.Address,
			"wallet":  wallet,
			"balance": holder.Balance,
			"delta":   ev.BalanceDelta,
		}).Warn("holder balance went negative, flooring at zero")
		newBalance = decimal.Zero
	}
	holder.Balance = newBalance

	if ev.BalanceDelta.IsPositive() && holder.FirstBuyBlock == 0 {
		holder.FirstBuyBlock = ev.BlockNumber
	}

	if token.TotalSupply.IsPositive() {
		holder.PercentOfSupply = holder.Balance.Div(token.TotalSupply).Mul(decimal.NewFromInt(100))
	} else {
		holder.PercentOfSupply = decimal.Zero
	}

	c.classify(token, holder)
	holder.LastUpdated = ev.Timestamp

	if err := c.holders.Upsert(ctx, holder); err != nil {
		return nil, fmt.Errorf("upsert holder: %w", err)
	}
	return holder, nil
}

// RecordBuy marks a wallet's first recorded buy block if not already set and
// refreshes its classification. Used by the swap path, where a buy is known
// to be a buy rather than a bare transfer-in.
func (c *Classifier) RecordBuy(ctx context.Context, token *domain.Token, walletAddress string, blockNumber int64) error {
	wallet := domain.NormalizeAddress(walletAddress)

	holder, err := c.holders.Get(ctx, token.Address, wallet)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		holder = &domain.TokenHolder{
			TokenAddress:  token.Address,
			WalletAddress: wallet,
			Balance:       decimal.Zero,
		}
	case err != nil:
		return fmt.Errorf("get holder: %w", err)
	}

	if holder.FirstBuyBlock != 0 && holder.FirstBuyBlock <= blockNumber {
		return nil
	}
	holder.FirstBuyBlock = blockNumber
	c.classify(token, holder)

	if err := c.holders.Upsert(ctx, holder); err != nil {
		return fmt.Errorf("upsert holder: %w", err)
	}
	return nil
}

// classify re-evaluates the wallet flags. Run at first-seen and on every
// update; flags are derived, never sticky.
func (c *Classifier) classify(token *domain.Token, h *domain.TokenHolder) {
	h.IsDev = h.WalletAddress == domain.NormalizeAddress(token.CreatorAddress) && h.WalletAddress != ""
	h.IsSniper = h.FirstBuyBlock > 0 &&
		token.BlockNumber > 0 &&
		h.FirstBuyBlock <= token.BlockNumber+c.sniperWindow
	h.IsContract = c.isContract(h.WalletAddress)
}

// ComputeMetrics derives the token-level holder aggregates from current
// balances. The top-10 ordering breaks balance ties by wallet address
// ascending so the result is deterministic.
func (c *Classifier) ComputeMetrics(ctx context.Context, token *domain.Token) (Metrics, error) {
	rows, err := c.holders.GetByToken(ctx, token.Address)
	if err != nil {
		return Metrics{}, fmt.Errorf("get holders: %w", err)
	}

	holding := rows[:0]
	for _, h := range rows {
		if h.Holding() {
			holding = append(holding, h)
		}
	}

	m := Metrics{
		HolderCount:        len(holding),
		Top10Percent:       decimal.Zero,
		DevHoldingsPercent: decimal.Zero,
		SniperRatio:        decimal.Zero,
	}

	sort.Slice(holding, func(i, j int) bool {
		cmp := holding[i].Balance.Cmp(holding[j].Balance)
		if cmp != 0 {
			return cmp > 0
		}
		return holding[i].WalletAddress < holding[j].WalletAddress
	})

	sniperBalance := decimal.Zero
	for i, h := range holding {
		if i < 10 {
			m.Top10Percent = m.Top10Percent.Add(h.PercentOfSupply)
		}
		if h.IsDev {
			m.DevHoldingsPercent = m.DevHoldingsPercent.Add(h.PercentOfSupply)
		}
		if h.IsSniper {
			sniperBalance = sniperBalance.Add(h.Balance)
		}
	}
	if token.TotalSupply.IsPositive() {
		m.SniperRatio = sniperBalance.Div(token.TotalSupply)
	}

	return m, nil
}
