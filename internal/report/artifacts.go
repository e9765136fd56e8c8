package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"path"
	"strconv"

	"github.com/mfaber/hindsight/internal/backtest"
	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/storage/archive"
	"github.com/mfaber/hindsight/internal/strategy"
)

const seriesTimeLayout = "2006-01-02 15:04:05"

// SeriesCSV encodes the full bar-aligned run series as one CSV document:
// timestamp, OHLCV, every indicator line, the four signal flags, position and
// the return/equity columns. NaN values render as empty cells so the charting
// tool can distinguish warm-up from zero.
func SeriesCSV(res *backtest.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Date", "Open", "High", "Low", "Close", "Volume"}
	for _, line := range res.Lines {
		header = append(header, line.Name)
	}
	header = append(header,
		"ShortEnter", "ShortExit", "LongEnter", "LongExit",
		"Position", "MarketReturn", "StrategyReturn", "MarketEquity", "StrategyEquity")
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i, bar := range res.Bars {
		row := []string{
			bar.Time.UTC().Format(seriesTimeLayout),
			floatCell(bar.Open),
			floatCell(bar.High),
			floatCell(bar.Low),
			floatCell(bar.Close),
			floatCell(bar.Volume),
		}
		for _, line := range res.Lines {
			row = append(row, floatCell(line.Values[i]))
		}
		row = append(row,
			flagCell(res.Signals.ShortEnter[i]),
			flagCell(res.Signals.ShortExit[i]),
			flagCell(res.Signals.LongEnter[i]),
			flagCell(res.Signals.LongExit[i]),
			strconv.Itoa(res.Position[i]),
			floatCell(res.MarketReturn[i]),
			floatCell(res.StrategyReturn[i]),
			floatCell(res.MarketEquity[i]),
			floatCell(res.StrategyEquity[i]),
		)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ratiosDoc shadows backtest.Ratios for JSON output: an undefined
// risk-adjusted return becomes null instead of breaking the encoder.
type ratiosDoc struct {
	Config             strategy.Config `json:"config"`
	Params             string          `json:"params"`
	MarketReturn       float64         `json:"market_return"`
	StrategyReturn     float64         `json:"strategy_return"`
	MaxDrawdown        float64         `json:"max_drawdown"`
	DrawdownPeriod     int             `json:"drawdown_period"`
	DrawdownStart      int             `json:"drawdown_start"`
	DrawdownEnd        int             `json:"drawdown_end"`
	RiskAdjustedReturn *float64        `json:"risk_adjusted_return"`
}

// RatiosJSON encodes the run's configuration and ratios as an indented JSON
// document.
func RatiosJSON(res *backtest.Result) ([]byte, error) {
	doc := ratiosDoc{
		Config:         res.Config,
		Params:         res.Config.Params(),
		MarketReturn:   res.Ratios.MarketReturn,
		StrategyReturn: res.Ratios.StrategyReturn,
		MaxDrawdown:    res.Ratios.MaxDrawdown,
		DrawdownPeriod: res.Ratios.DrawdownPeriod,
		DrawdownStart:  res.Ratios.DrawdownStart,
		DrawdownEnd:    res.Ratios.DrawdownEnd,
	}
	if rar := res.Ratios.RiskAdjustedReturn; !math.IsNaN(rar) {
		doc.RiskAdjustedReturn = &rar
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Archive writes the run artifacts under prefix: <prefix>/series.csv and
// <prefix>/ratios.json.
func Archive(ctx context.Context, store archive.Storage, prefix string, res *backtest.Result) error {
	series, err := SeriesCSV(res)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	ratios, err := RatiosJSON(res)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}

	if err := store.Write(ctx, path.Join(prefix, "series.csv"), series); err != nil {
		return err
	}
	return store.Write(ctx, path.Join(prefix, "ratios.json"), ratios)
}

func floatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func flagCell(set bool) string {
	if set {
		return "1"
	}
	return "0"
}
