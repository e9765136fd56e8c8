package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mfaber/hindsight/internal/app"
	"github.com/mfaber/hindsight/internal/backtest"
	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/marketdata"
	"github.com/mfaber/hindsight/internal/report"
	"github.com/mfaber/hindsight/internal/strategy"
)

var (
	btVariant   string
	btInterval  string
	btMAType    string
	btShort     int
	btLong      int
	btExit      int
	btKPeriod   int
	btSmooth    int
	btDPeriod   int
	btStartHour int
	btEndHour   int
	btPlot      bool
	btOut       string
	btStats     bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [data.csv]",
	Short: "Run one strategy against a historical CSV",
	Long: `Run a single strategy configuration against a bar CSV (prepared or
Dukascopy export) and print the performance ratios. With --plot the
bar-aligned series CSV and ratios JSON are written to the artifact store.`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktestCmd,
}

func init() {
	backtestCmd.Flags().StringVar(&btVariant, "variant", "", "strategy variant: two_ma, three_ma, stochastic")
	backtestCmd.Flags().StringVar(&btInterval, "interval", "", `resampling rule, e.g. "15T", "4H", "D" (empty = native)`)
	backtestCmd.Flags().StringVar(&btMAType, "ma-type", "", "moving average type: SMA or EMA")
	backtestCmd.Flags().IntVar(&btShort, "short", 0, "short MA period")
	backtestCmd.Flags().IntVar(&btLong, "long", 0, "long MA period")
	backtestCmd.Flags().IntVar(&btExit, "exit", 0, "exit MA period (three_ma)")
	backtestCmd.Flags().IntVar(&btKPeriod, "k-period", 0, "stochastic %K lookback")
	backtestCmd.Flags().IntVar(&btSmooth, "smooth", 0, "stochastic %K smoothing")
	backtestCmd.Flags().IntVar(&btDPeriod, "d-period", 0, "stochastic %D period")
	backtestCmd.Flags().IntVar(&btStartHour, "start-hour", -1, "first tradable hour of day")
	backtestCmd.Flags().IntVar(&btEndHour, "end-hour", -1, "last tradable hour of day")
	backtestCmd.Flags().BoolVar(&btPlot, "plot", false, "write series.csv and ratios.json artifacts")
	backtestCmd.Flags().StringVar(&btOut, "out", "", "artifact prefix (default runs/<timestamp>)")
	backtestCmd.Flags().BoolVar(&btStats, "stats", false, "print daily equity and weekday/month transaction stats")

	rootCmd.AddCommand(backtestCmd)
}

// strategyFromFlags starts from the config file's strategy block and lets
// set flags override it field by field.
func strategyFromFlags(cmd *cobra.Command, base strategy.Config) strategy.Config {
	cfg := base
	if cmd.Flags().Changed("variant") {
		cfg.Variant = strategy.Variant(btVariant)
	}
	if cmd.Flags().Changed("interval") {
		cfg.Interval = btInterval
	}
	if cmd.Flags().Changed("ma-type") {
		cfg.MAType = strategy.MAType(btMAType)
	}
	if cmd.Flags().Changed("short") {
		cfg.ShortPeriod = btShort
	}
	if cmd.Flags().Changed("long") {
		cfg.LongPeriod = btLong
	}
	if cmd.Flags().Changed("exit") {
		cfg.ExitPeriod = btExit
	}
	if cmd.Flags().Changed("k-period") {
		cfg.KPeriod = btKPeriod
	}
	if cmd.Flags().Changed("smooth") {
		cfg.Smooth = btSmooth
	}
	if cmd.Flags().Changed("d-period") {
		cfg.DPeriod = btDPeriod
	}
	if cmd.Flags().Changed("start-hour") {
		cfg.StartHour = btStartHour
	}
	if cmd.Flags().Changed("end-hour") {
		cfg.EndHour = btEndHour
	}
	if cmd.Flags().Changed("plot") {
		cfg.Plot = btPlot
	}
	return cfg
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	strat := strategyFromFlags(cmd, cfg.StrategyConfig())

	bars, err := marketdata.LoadCSV(args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	log.Debug("loaded bars", zap.Int("count", len(bars)), zap.String("file", args[0]))

	res, err := backtest.Run(bars, strat)
	if err != nil && !errors.Is(err, core.ErrIndeterminate) {
		return err
	}

	if err := report.RunTable(os.Stdout, res); err != nil {
		return err
	}
	fmt.Println()
	if err := report.RatioTable(os.Stdout, res.Ratios); err != nil {
		return err
	}

	if btStats {
		fmt.Println()
		printStats(res)
	}

	if strat.Plot {
		prefix := btOut
		if prefix == "" {
			prefix = "runs/" + time.Now().UTC().Format("20060102-150405")
		}
		a, err := app.New(cfg, log)
		if err != nil {
			return err
		}
		if err := report.Archive(cmd.Context(), a.Archive(), prefix, res); err != nil {
			return err
		}
		fmt.Printf("\nartifacts: %s/series.csv, %s/ratios.json\n", prefix, prefix)
	}
	return nil
}

func printStats(res *backtest.Result) {
	daily := report.ComputeDailyEquity(res)
	if n := len(daily); n > 0 {
		first, last := daily[0], daily[n-1]
		fmt.Printf("daily equity: %d days, %.4f on %s -> %.4f on %s\n",
			n,
			first.Equity, first.Day.Format("2006-01-02"),
			last.Equity, last.Day.Format("2006-01-02"))
	}

	stats := report.ComputeTransactionStats(res)
	fmt.Println("transactions by weekday (profit/loss/neutral):")
	for d := time.Monday; d <= time.Friday; d++ {
		t := stats.Weekday[d]
		fmt.Printf("  %-9s %4d / %4d / %4d\n", d, t.Profit, t.Loss, t.Neutral)
	}
	fmt.Println("transactions by month (profit/loss/neutral):")
	for m := time.January; m <= time.December; m++ {
		t := stats.Month[m]
		if t.Profit+t.Loss+t.Neutral == 0 {
			continue
		}
		fmt.Printf("  %-9s %4d / %4d / %4d\n", m, t.Profit, t.Loss, t.Neutral)
	}
}
