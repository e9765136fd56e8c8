package backtest

import (
	"errors"

	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/marketdata"
	"github.com/mfaber/hindsight/internal/strategy"
)

// Run executes the full pipeline for one strategy configuration: resample,
// signals, positions, returns, equity, ratios. The input bars are never
// mutated; resampling copies the rows it snapshots.
//
// A zero-drawdown run returns the populated Result together with an
// ErrIndeterminate from the ratio step. Callers that only care about a
// completed run should treat that error as advisory:
//
//	res, err := backtest.Run(bars, cfg)
//	if err != nil && !errors.Is(err, core.ErrIndeterminate) { ... }
func Run(bars []core.Bar, cfg strategy.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := core.ValidateBars(bars); err != nil {
		return nil, err
	}

	// An empty interval runs at the input's native resolution.
	if cfg.Interval != "" {
		resampled, err := marketdata.Resample(bars, cfg.Interval)
		if err != nil {
			return nil, err
		}
		bars = resampled
	}

	sig, lines, err := strategy.Generate(bars, cfg)
	if err != nil {
		return nil, err
	}

	position := ResolvePositions(sig)
	marketReturns := MarketReturns(core.Closes(bars))
	strategyReturns := StrategyReturns(marketReturns, position)
	marketEquity := Equity(marketReturns)
	strategyEquity := Equity(strategyReturns)

	res := &Result{
		Config:         cfg,
		Bars:           bars,
		Lines:          lines,
		Signals:        sig,
		Position:       position,
		MarketReturn:   marketReturns,
		StrategyReturn: strategyReturns,
		MarketEquity:   marketEquity,
		StrategyEquity: strategyEquity,
	}

	ratios, err := ComputeRatios(marketEquity, strategyEquity)
	res.Ratios = ratios
	if err != nil && !errors.Is(err, core.ErrIndeterminate) {
		return nil, err
	}
	return res, err
}
