package backtest

import (
	"math"

	"github.com/mfaber/hindsight/internal/core"
)

// ComputeRatios derives the performance metrics of a run from its completed
// market and strategy equity curves.
//
// The deepest drawdown is located positionally: DrawdownEnd is the index
// maximizing the gap between the running maximum of the strategy curve and
// the curve itself, DrawdownStart the index of the highest equity in the
// inclusive prefix [0, DrawdownEnd]. Ties resolve to the first index.
//
// When the curve never draws down MaxDrawdown is 0 and the risk-adjusted
// return is undefined; the populated Ratios are returned together with an
// ErrIndeterminate so the caller decides rather than receiving a silent Inf.
func ComputeRatios(marketEquity, strategyEquity []float64) (Ratios, error) {
	if len(strategyEquity) == 0 || len(marketEquity) == 0 {
		return Ratios{}, core.ErrNoData
	}

	r := Ratios{
		MarketReturn:   marketEquity[len(marketEquity)-1] - 1,
		StrategyReturn: strategyEquity[len(strategyEquity)-1] - 1,
	}

	runMax := strategyEquity[0]
	worst := 0.0
	end := 0
	for i, v := range strategyEquity {
		if v > runMax {
			runMax = v
		}
		if dd := runMax - v; dd > worst {
			worst = dd
			end = i
		}
	}

	start := 0
	for i := 1; i <= end; i++ {
		if strategyEquity[i] > strategyEquity[start] {
			start = i
		}
	}

	r.DrawdownStart = start
	r.DrawdownEnd = end
	r.DrawdownPeriod = end - start
	r.MaxDrawdown = (strategyEquity[start] - strategyEquity[end]) * 100

	if r.MaxDrawdown == 0 {
		r.RiskAdjustedReturn = math.NaN()
		return r, core.WrapError(core.ErrIndeterminate, nil)
	}
	r.RiskAdjustedReturn = r.StrategyReturn * 100 / r.MaxDrawdown
	return r, nil
}
