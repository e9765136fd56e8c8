package backtest

import "math"

// MarketReturns computes the log-return series of a close column. The first
// value is NaN: there is no previous bar to diff against.
func MarketReturns(closes []float64) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(closes); i++ {
		out[i] = math.Log(closes[i]) - math.Log(closes[i-1])
	}
	return out
}

// StrategyReturns attributes each bar's market return to the position held on
// that same bar. No one-bar lag is applied between signal and attribution;
// the source works this way and the behavior is kept for fidelity.
func StrategyReturns(marketReturns []float64, position []int) []float64 {
	out := make([]float64, len(marketReturns))
	for i, r := range marketReturns {
		out[i] = r * float64(position[i])
	}
	return out
}

// Equity builds an additive equity curve: 1 plus the cumulative sum of
// returns. NaN returns contribute nothing, so the curve itself is always
// fully defined. The curves are additive, not compounded, matching the ratio
// definitions downstream.
func Equity(returns []float64) []float64 {
	out := make([]float64, len(returns))
	if len(returns) == 0 {
		return out
	}

	eq := 1.0
	for i, r := range returns {
		if !math.IsNaN(r) {
			eq += r
		}
		out[i] = eq
	}
	return out
}
