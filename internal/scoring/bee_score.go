package scoring

import (
	"github.com/shopspring/decimal"

	"beanbee-engine/internal/domain"
)

// Score bounds.
const (
	MaxSafetyScore   = 60
	MaxTractionScore = 40
	MaxBeeScore      = 100
)

// Inputs are the token fields that contribute to the score. The calculator
// is a pure function of this snapshot.
type Inputs struct {
	LiquidityUSD       decimal.Decimal
	LPLocked           bool
	LPLockPercent      decimal.Decimal
	Top10HolderPercent decimal.Decimal
	DevHoldingsPercent decimal.Decimal
	OwnershipRenounced bool

	Volume1hUSD      decimal.Decimal
	Trades1h         int
	HolderCount      int
	HolderCount1hAgo int
	PriceChange1h    *decimal.Decimal // nil when no baseline exists yet
	Buys1h           int
	Sells1h          int
}

// InputsFromToken extracts the contributing fields from a token row.
func InputsFromToken(t *domain.Token) Inputs {
	return Inputs{
		LiquidityUSD:       t.LiquidityUSD,
		LPLocked:           t.LPLocked,
		LPLockPercent:      t.LPLockPercent,
		Top10HolderPercent: t.Top10HolderPercent,
		DevHoldingsPercent: t.DevHoldingsPercent,
		OwnershipRenounced: t.OwnershipRenounced,
		Volume1hUSD:        t.Volume1hUSD,
		Trades1h:           t.Trades1h,
		HolderCount:        t.HolderCount,
		HolderCount1hAgo:   t.HolderCount1hAgo,
		PriceChange1h:      t.PriceChange1h,
		Buys1h:             t.Buys1h,
		Sells1h:            t.Sells1h,
	}
}

// Breakdown is one scored component with its reason.
type Breakdown struct {
	Name     string
	Score    int16
	MaxScore int16
	Reason   string
}

// Result is a computed score with per-component breakdowns.
type Result struct {
	Total             int16 // 0-100
	SafetyScore       int16 // 0-60
	SafetyBreakdown   []Breakdown
	TractionScore     int16 // 0-40
	TractionBreakdown []Breakdown
}

// Thresholds are the tier boundaries the calculator keys off. All comparisons
// are exact decimal comparisons. Raising a boundary never raises a score for
// a fixed input, so monotonicity of the score in its inputs is preserved for
// any threshold set.
type Thresholds struct {
	LiquidityLow  decimal.Decimal // below: 0 points
	LiquidityMid  decimal.Decimal
	LiquidityHigh decimal.Decimal // at or above: full points
}

// DefaultThresholds returns the standard tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LiquidityLow:  decimal.NewFromInt(10_000),
		LiquidityMid:  decimal.NewFromInt(50_000),
		LiquidityHigh: decimal.NewFromInt(100_000),
	}
}

// Calculator computes BeeScores. Zero value is not usable; construct with
// NewCalculator.
type Calculator struct {
	th Thresholds
}

// NewCalculator creates a calculator with the given thresholds.
func NewCalculator(th Thresholds) *Calculator {
	return &Calculator{th: th}
}

// Calculate computes the composite score: safety (0-60) + traction (0-40),
// clamped to [0,100].
func (c *Calculator) Calculate(in Inputs) Result {
	safety, safetyBd := c.calculateSafety(in)
	traction, tractionBd := c.calculateTraction(in)

	total := safety + traction
	if total > MaxBeeScore {
		total = MaxBeeScore
	}
	if total < 0 {
		total = 0
	}

	return Result{
		Total:             total,
		SafetyScore:       safety,
		SafetyBreakdown:   safetyBd,
		TractionScore:     traction,
		TractionBreakdown: tractionBd,
	}
}

func (c *Calculator) calculateSafety(in Inputs) (int16, []Breakdown) {
	var score int16
	breakdown := make([]Breakdown, 0, 5)

	// Liquidity: <$10k = 0, $10-50k = 5, $50-100k = 10, >$100k = 15.
	var liqScore int16
	var liqReason string
	switch {
	case in.LiquidityUSD.GreaterThanOrEqual(c.th.LiquidityHigh):
		liqScore, liqReason = 15, "Excellent liquidity (>$100k)"
	case in.LiquidityUSD.GreaterThanOrEqual(c.th.LiquidityMid):
		liqScore, liqReason = 10, "Good liquidity ($50k-$100k)"
	case in.LiquidityUSD.GreaterThanOrEqual(c.th.LiquidityLow):
		liqScore, liqReason = 5, "Low liquidity ($10k-$50k)"
	default:
		liqScore, liqReason = 0, "Very low liquidity (<$10k)"
	}
	score += liqScore
	breakdown = append(breakdown, Breakdown{Name: "Liquidity", Score: liqScore, MaxScore: 15, Reason: liqReason})

	// LP lock: not locked = 0, <50% = 5, 50-90% = 10, >=90% = 15.
	var lockScore int16
	var lockReason string
	switch {
	case !in.LPLocked:
		lockScore, lockReason = 0, "LP not locked - high rug risk"
	case in.LPLockPercent.GreaterThanOrEqual(decimal.NewFromInt(90)):
		lockScore, lockReason = 15, "LP >90% locked - excellent"
	case in.LPLockPercent.GreaterThanOrEqual(decimal.NewFromInt(50)):
		lockScore, lockReason = 10, "LP 50-90% locked - good"
	default:
		lockScore, lockReason = 5, "LP <50% locked - moderate risk"
	}
	score += lockScore
	breakdown = append(breakdown, Breakdown{Name: "LP Lock", Score: lockScore, MaxScore: 15, Reason: lockReason})

	// Distribution: top 10 >=80% = 0, 60-80% = 5, 40-60% = 10, <40% = 15.
	var distScore int16
	var distReason string
	switch {
	case in.Top10HolderPercent.LessThan(decimal.NewFromInt(40)):
		distScore, distReason = 15, "Well distributed (<40% top 10)"
	case in.Top10HolderPercent.LessThan(decimal.NewFromInt(60)):
		distScore, distReason = 10, "Moderately distributed (40-60% top 10)"
	case in.Top10HolderPercent.LessThan(decimal.NewFromInt(80)):
		distScore, distReason = 5, "Concentrated (60-80% top 10)"
	default:
		distScore, distReason = 0, "Highly concentrated (>80% top 10)"
	}
	score += distScore
	breakdown = append(breakdown, Breakdown{Name: "Distribution", Score: distScore, MaxScore: 15, Reason: distReason})

	// Dev holdings: >=20% = 0, 10-20% = 3, 5-10% = 7, <5% = 10.
	var devScore int16
	var devReason string
	switch {
	case in.DevHoldingsPercent.LessThan(decimal.NewFromInt(5)):
		devScore, devReason = 10, "Low dev holdings (<5%)"
	case in.DevHoldingsPercent.LessThan(decimal.NewFromInt(10)):
		devScore, devReason = 7, "Moderate dev holdings (5-10%)"
	case in.DevHoldingsPercent.LessThan(decimal.NewFromInt(20)):
		devScore, devReason = 3, "High dev holdings (10-20%)"
	default:
		devScore, devReason = 0, "Very high dev holdings (>20%)"
	}
	score += devScore
	breakdown = append(breakdown, Breakdown{Name: "Dev Holdings", Score: devScore, MaxScore: 10, Reason: devReason})

	// Contract: renounced ownership = +5.
	var contractScore int16
	var contractReason string
	if in.OwnershipRenounced {
		contractScore, contractReason = 5, "Ownership renounced"
	} else {
		contractScore, contractReason = 0, "Ownership not renounced"
	}
	score += contractScore
	breakdown = append(breakdown, Breakdown{Name: "Contract", Score: contractScore, MaxScore: 5, Reason: contractReason})

	return score, breakdown
}

func (c *Calculator) calculateTraction(in Inputs) (int16, []Breakdown) {
	var score int16
	breakdown := make([]Breakdown, 0, 5)

	// Volume relative to liquidity. Healthy is 50-200%.
	volRatio := decimal.Zero
	if in.LiquidityUSD.IsPositive() {
		volRatio = in.Volume1hUSD.Div(in.LiquidityUSD)
	}
	var volScore int16
	var volReason string
	switch {
	case volRatio.GreaterThanOrEqual(decimal.NewFromFloat(0.5)) && volRatio.LessThanOrEqual(decimal.NewFromInt(2)):
		volScore, volReason = 12, "Healthy volume (50-200% of liquidity)"
	case volRatio.GreaterThanOrEqual(decimal.NewFromFloat(0.2)) && volRatio.LessThanOrEqual(decimal.NewFromInt(3)):
		volScore, volReason = 8, "Good volume (20-300% of liquidity)"
	case volRatio.GreaterThanOrEqual(decimal.NewFromFloat(0.1)):
		volScore, volReason = 4, "Low volume (>10% of liquidity)"
	default:
		volScore, volReason = 0, "Very low volume"
	}
	score += volScore
	breakdown = append(breakdown, Breakdown{Name: "Volume", Score: volScore, MaxScore: 12, Reason: volReason})

	// Trade count per hour.
	var tradesScore int16
	var tradesReason string
	switch {
	case in.Trades1h >= 100:
		tradesScore, tradesReason = 8, "Very active (100+ trades/hr)"
	case in.Trades1h >= 50:
		tradesScore, tradesReason = 6, "Active (50-100 trades/hr)"
	case in.Trades1h >= 20:
		tradesScore, tradesReason = 4, "Moderate activity (20-50 trades/hr)"
	case in.Trades1h >= 5:
		tradesScore, tradesReason = 2, "Low activity (5-20 trades/hr)"
	default:
		tradesScore, tradesReason = 0, "Very low activity (<5 trades/hr)"
	}
	score += tradesScore
	breakdown = append(breakdown, Breakdown{Name: "Trades", Score: tradesScore, MaxScore: 8, Reason: tradesReason})

	// Holder growth over the last hour, percent.
	growth := decimal.Zero
	if in.HolderCount1hAgo > 0 {
		growth = decimal.NewFromInt(int64(in.HolderCount - in.HolderCount1hAgo)).
			Div(decimal.NewFromInt(int64(in.HolderCount1hAgo))).
			Mul(decimal.NewFromInt(100))
	}
	var growthScore int16
	var growthReason string
	switch {
	case growth.GreaterThanOrEqual(decimal.NewFromInt(20)):
		growthScore, growthReason = 8, "Strong growth (20%+ new holders/hr)"
	case growth.GreaterThanOrEqual(decimal.NewFromInt(10)):
		growthScore, growthReason = 6, "Good growth (10-20% new holders/hr)"
	case growth.GreaterThanOrEqual(decimal.NewFromInt(5)):
		growthScore, growthReason = 4, "Moderate growth (5-10% new holders/hr)"
	case growth.IsPositive():
		growthScore, growthReason = 2, "Slight growth (<5% new holders/hr)"
	default:
		growthScore, growthReason = 0, "No holder growth"
	}
	score += growthScore
	breakdown = append(breakdown, Breakdown{Name: "Growth", Score: growthScore, MaxScore: 8, Reason: growthReason})

	// Price action. An undefined change (no baseline yet) is scored like a
	// flat price, which lands in the acceptable band.
	change := decimal.Zero
	if in.PriceChange1h != nil {
		change = *in.PriceChange1h
	}
	var priceScore int16
	var priceReason string
	switch {
	case change.GreaterThanOrEqual(decimal.NewFromInt(5)) && change.LessThanOrEqual(decimal.NewFromInt(100)):
		priceScore, priceReason = 6, "Healthy gain (5-100%)"
	case change.GreaterThanOrEqual(decimal.Zero) && change.LessThanOrEqual(decimal.NewFromInt(200)):
		priceScore, priceReason = 4, "Acceptable price action (0-200%)"
	case change.GreaterThanOrEqual(decimal.NewFromInt(-20)):
		priceScore, priceReason = 2, "Small dip (<20% loss)"
	case change.LessThan(decimal.NewFromInt(-50)):
		priceScore, priceReason = 0, "Major dump (>50% loss)"
	default:
		priceScore, priceReason = 1, "Volatile price action"
	}
	score += priceScore
	breakdown = append(breakdown, Breakdown{Name: "Price Action", Score: priceScore, MaxScore: 6, Reason: priceReason})

	// Buy/sell balance. No trades counts as neutral.
	totalTrades := in.Buys1h + in.Sells1h
	buyRatio := decimal.NewFromFloat(0.5)
	if totalTrades > 0 {
		buyRatio = decimal.NewFromInt(int64(in.Buys1h)).Div(decimal.NewFromInt(int64(totalTrades)))
	}
	var balanceScore int16
	var balanceReason string
	switch {
	case buyRatio.GreaterThanOrEqual(decimal.NewFromFloat(0.4)) && buyRatio.LessThanOrEqual(decimal.NewFromFloat(0.7)):
		balanceScore, balanceReason = 6, "Balanced with buy pressure (40-70% buys)"
	case buyRatio.GreaterThanOrEqual(decimal.NewFromFloat(0.3)) && buyRatio.LessThanOrEqual(decimal.NewFromFloat(0.8)):
		balanceScore, balanceReason = 4, "Acceptable balance (30-80% buys)"
	case buyRatio.GreaterThanOrEqual(decimal.NewFromFloat(0.2)):
		balanceScore, balanceReason = 2, "Sell pressure (only 20-30% buys)"
	default:
		balanceScore, balanceReason = 0, "Heavy selling (<20% buys)"
	}
	score += balanceScore
	breakdown = append(breakdown, Breakdown{Name: "Buy/Sell", Score: balanceScore, MaxScore: 6, Reason: balanceReason})

	return score, breakdown
}

// Rating maps a score to a human-readable label.
func Rating(score int16) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	case score >= 20:
		return "Poor"
	default:
		return "Risky"
	}
}

// RatingColor maps a score to a UI color name.
func RatingColor(score int16) string {
	switch {
	case score >= 80:
		return "green"
	case score >= 60:
		return "lime"
	case score >= 40:
		return "yellow"
	case score >= 20:
		return "orange"
	default:
		return "red"
	}
}
