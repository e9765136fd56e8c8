package backtest

import (
	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/strategy"
)

// Result is the full bar-aligned output of one pipeline run. Every series has
// the same length as Bars. It is the boundary object handed to the report
// layer; the engine never renders or prints it.
type Result struct {
	Config strategy.Config

	Bars    []core.Bar
	Lines   []strategy.Line
	Signals *strategy.Signals

	Position       []int
	MarketReturn   []float64
	StrategyReturn []float64
	MarketEquity   []float64
	StrategyEquity []float64

	Ratios Ratios
}

// Ratios aggregates the performance metrics of one run. Drawdown indices are
// positional (bar counts), not timestamps. Immutable once computed.
type Ratios struct {
	MarketReturn   float64 `json:"market_return"`
	StrategyReturn float64 `json:"strategy_return"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	DrawdownPeriod int     `json:"drawdown_period"`
	DrawdownStart  int     `json:"drawdown_start"`
	DrawdownEnd    int     `json:"drawdown_end"`

	// RiskAdjustedReturn is NaN when MaxDrawdown is zero; ComputeRatios
	// reports that case as ErrIndeterminate alongside the populated value.
	RiskAdjustedReturn float64 `json:"risk_adjusted_return"`
}
