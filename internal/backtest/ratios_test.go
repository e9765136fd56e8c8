package backtest

import (
	"errors"
	"math"
	"testing"

	"github.com/mfaber/hindsight/internal/core"
)

func TestComputeRatios(t *testing.T) {
	// Peak at index 2 (1.06), trough at index 4 (1.01), recovery after.
	strategyEq := []float64{1.00, 1.03, 1.06, 1.02, 1.01, 1.05, 1.09}
	marketEq := []float64{1.00, 1.01, 1.02, 1.03, 1.04, 1.05, 1.06}

	r, err := ComputeRatios(marketEq, strategyEq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(r.MarketReturn-0.06) > 1e-12 {
		t.Errorf("market return = %v, want 0.06", r.MarketReturn)
	}
	if math.Abs(r.StrategyReturn-0.09) > 1e-12 {
		t.Errorf("strategy return = %v, want 0.09", r.StrategyReturn)
	}
	if r.DrawdownStart != 2 || r.DrawdownEnd != 4 {
		t.Errorf("drawdown window = [%d,%d], want [2,4]", r.DrawdownStart, r.DrawdownEnd)
	}
	if r.DrawdownPeriod != 2 {
		t.Errorf("drawdown period = %d, want 2", r.DrawdownPeriod)
	}
	if math.Abs(r.MaxDrawdown-5.0) > 1e-9 {
		t.Errorf("max drawdown = %v, want 5.0", r.MaxDrawdown)
	}
	if math.Abs(r.RiskAdjustedReturn-0.09*100/r.MaxDrawdown) > 1e-12 {
		t.Errorf("RAR = %v", r.RiskAdjustedReturn)
	}
}

func TestComputeRatios_FirstTieWins(t *testing.T) {
	// Two equally deep troughs: the earlier one is reported.
	strategyEq := []float64{1.00, 1.10, 1.05, 1.10, 1.05, 1.10}
	marketEq := []float64{1.00, 1.00, 1.00, 1.00, 1.00, 1.00}

	r, err := ComputeRatios(marketEq, strategyEq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DrawdownStart != 1 || r.DrawdownEnd != 2 {
		t.Errorf("drawdown window = [%d,%d], want first tie [1,2]", r.DrawdownStart, r.DrawdownEnd)
	}
}

func TestComputeRatios_StartNeverAfterEnd(t *testing.T) {
	curves := [][]float64{
		{1.0, 1.1, 1.2, 1.3},
		{1.3, 1.2, 1.1, 1.0},
		{1.0, 0.9, 1.1, 0.8, 1.2},
	}
	for _, eq := range curves {
		r, _ := ComputeRatios(eq, eq)
		if r.DrawdownStart > r.DrawdownEnd {
			t.Errorf("curve %v: start %d > end %d", eq, r.DrawdownStart, r.DrawdownEnd)
		}
		if r.MaxDrawdown < 0 {
			t.Errorf("curve %v: negative drawdown %v", eq, r.MaxDrawdown)
		}
	}
}

func TestComputeRatios_FlatCurveIndeterminate(t *testing.T) {
	// Flat equity never draws down, so the risk-adjusted return is
	// undefined. That must surface as an explicit error, not a silent NaN.
	flat := []float64{1.0, 1.0, 1.0, 1.0}

	r, err := ComputeRatios(flat, flat)
	if !errors.Is(err, core.ErrIndeterminate) {
		t.Fatalf("want ErrIndeterminate, got %v", err)
	}
	if r.MaxDrawdown != 0 {
		t.Errorf("max drawdown = %v, want 0", r.MaxDrawdown)
	}
	if !math.IsNaN(r.RiskAdjustedReturn) {
		t.Errorf("RAR = %v, want NaN", r.RiskAdjustedReturn)
	}
	// The remaining fields are still populated.
	if r.StrategyReturn != 0 || r.MarketReturn != 0 {
		t.Errorf("returns should still be computed: %+v", r)
	}
}

func TestComputeRatios_MonotonicRiseIndeterminate(t *testing.T) {
	rising := []float64{1.0, 1.1, 1.2, 1.3}
	if _, err := ComputeRatios(rising, rising); !errors.Is(err, core.ErrIndeterminate) {
		t.Errorf("monotonic rise: want ErrIndeterminate, got %v", err)
	}
}

func TestComputeRatios_Empty(t *testing.T) {
	if _, err := ComputeRatios(nil, nil); !errors.Is(err, core.ErrNoData) {
		t.Errorf("want ErrNoData, got %v", err)
	}
}
