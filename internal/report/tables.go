package report

import (
	"fmt"
	"io"
	"math"

	"github.com/olekukonko/tablewriter"

	"github.com/mfaber/hindsight/internal/backtest"
	"github.com/mfaber/hindsight/internal/montecarlo"
)

// RatioTable renders the performance ratios of one run.
func RatioTable(w io.Writer, r backtest.Ratios) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	table.Append("Market return %", fmt.Sprintf("%.4f", r.MarketReturn))
	table.Append("Strategy return %", fmt.Sprintf("%.4f", r.StrategyReturn))
	table.Append("Max drawdown %", fmt.Sprintf("%.4f", r.MaxDrawdown))
	table.Append("Drawdown bars", fmt.Sprintf("%d", r.DrawdownPeriod))
	table.Append("Drawdown window", fmt.Sprintf("%d..%d", r.DrawdownStart, r.DrawdownEnd))
	table.Append("Risk-adjusted return", rarLabel(r.RiskAdjustedReturn))
	return table.Render()
}

// RunTable renders a one-line summary of a single backtest run.
func RunTable(w io.Writer, res *backtest.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header("Variant", "Params", "Interval", "Bars", "Strategy %", "Market %", "Max DD %", "RAR")
	table.Append(
		string(res.Config.Variant),
		res.Config.Params(),
		intervalLabel(res.Config.Interval),
		fmt.Sprintf("%d", len(res.Bars)),
		fmt.Sprintf("%.4f", res.Ratios.StrategyReturn),
		fmt.Sprintf("%.4f", res.Ratios.MarketReturn),
		fmt.Sprintf("%.4f", res.Ratios.MaxDrawdown),
		rarLabel(res.Ratios.RiskAdjustedReturn),
	)
	return table.Render()
}

// SearchTable renders every simulation of a parameter search in sampling
// order, marking the winner.
func SearchTable(w io.Writer, res *montecarlo.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Params", "Strategy %", "Max DD %", "Status")

	for i, run := range res.Runs {
		status := ""
		switch {
		case run.Failed():
			status = "failed: " + run.Err.Error()
		case i == res.BestIndex:
			status = "winner"
		case run.Overrun:
			status = "overrun"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			run.Params,
			fmt.Sprintf("%.4f", run.StrategyReturn),
			fmt.Sprintf("%.4f", run.MaxDrawdown),
			status,
		)
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "best: #%d %s (overruns: %d, failures: %d)\n",
		res.BestIndex+1, res.Runs[res.BestIndex].Params, res.Overruns(), res.Failures())
	return nil
}

func rarLabel(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func intervalLabel(rule string) string {
	if rule == "" {
		return "native"
	}
	return rule
}
