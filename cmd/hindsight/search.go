package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mfaber/hindsight/internal/app"
	"github.com/mfaber/hindsight/internal/marketdata"
	"github.com/mfaber/hindsight/internal/montecarlo"
	"github.com/mfaber/hindsight/internal/report"
)

var (
	searchSims     int
	searchPriority string
	searchSeed     int64
	searchWorkers  int
	searchMAMin    int
	searchMAMax    int
	searchStochMin int
	searchStochMax int
	searchPlot     bool
	searchOut      string
)

var searchCmd = &cobra.Command{
	Use:   "search [data.csv]",
	Short: "Randomized parameter search over a historical CSV",
	Long: `Sample strategy parameters at random, score every draw with a full
backtest, and print the per-simulation table with the winner marked.
With --plot the winner's run artifacts are written to the artifact store.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearchCmd,
}

func init() {
	searchCmd.Flags().StringVar(&btVariant, "variant", "", "strategy variant: two_ma, three_ma, stochastic")
	searchCmd.Flags().StringVar(&btInterval, "interval", "", "resampling rule (empty = native)")
	searchCmd.Flags().StringVar(&btMAType, "ma-type", "", "moving average type: SMA or EMA")
	searchCmd.Flags().IntVar(&btStartHour, "start-hour", -1, "first tradable hour of day")
	searchCmd.Flags().IntVar(&btEndHour, "end-hour", -1, "last tradable hour of day")

	searchCmd.Flags().IntVar(&searchSims, "sims", 0, "number of simulations")
	searchCmd.Flags().StringVar(&searchPriority, "priority", "", "selection priority: return or drawdown")
	searchCmd.Flags().Int64Var(&searchSeed, "seed", 0, "random seed (0 = time-based)")
	searchCmd.Flags().IntVar(&searchWorkers, "workers", 0, "parallel workers")
	searchCmd.Flags().IntVar(&searchMAMin, "ma-min", 0, "MA period range lower bound")
	searchCmd.Flags().IntVar(&searchMAMax, "ma-max", 0, "MA period range upper bound")
	searchCmd.Flags().IntVar(&searchStochMin, "stoch-min", 0, "stochastic period range lower bound")
	searchCmd.Flags().IntVar(&searchStochMax, "stoch-max", 0, "stochastic period range upper bound")
	searchCmd.Flags().BoolVar(&searchPlot, "plot", false, "write the winner's artifacts")
	searchCmd.Flags().StringVar(&searchOut, "out", "", "artifact prefix (default runs/<timestamp>)")

	rootCmd.AddCommand(searchCmd)
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	mc := cfg.SearchConfig()
	mc.Strategy = strategyFromFlags(cmd, mc.Strategy)
	if cmd.Flags().Changed("sims") {
		mc.Simulations = searchSims
	}
	if cmd.Flags().Changed("priority") {
		mc.Priority = montecarlo.Priority(searchPriority)
	}
	if cmd.Flags().Changed("seed") {
		mc.Seed = searchSeed
	}
	if cmd.Flags().Changed("workers") {
		mc.Workers = searchWorkers
	}
	if cmd.Flags().Changed("ma-min") {
		mc.MARange.Min = searchMAMin
	}
	if cmd.Flags().Changed("ma-max") {
		mc.MARange.Max = searchMAMax
	}
	if cmd.Flags().Changed("stoch-min") {
		mc.StochRange.Min = searchStochMin
	}
	if cmd.Flags().Changed("stoch-max") {
		mc.StochRange.Max = searchStochMax
	}

	bars, err := marketdata.LoadCSV(args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	log.Info("starting search",
		zap.Int("simulations", mc.Simulations),
		zap.String("priority", string(mc.Priority)),
		zap.Int("bars", len(bars)),
	)

	res, err := montecarlo.Search(cmd.Context(), bars, mc, log)
	if err != nil {
		return err
	}

	if err := report.SearchTable(os.Stdout, res); err != nil {
		return err
	}

	if searchPlot && res.Best != nil {
		prefix := searchOut
		if prefix == "" {
			prefix = "runs/" + time.Now().UTC().Format("20060102-150405")
		}
		a, err := app.New(cfg, log)
		if err != nil {
			return err
		}
		if err := report.Archive(cmd.Context(), a.Archive(), prefix, res.Best); err != nil {
			return err
		}
		fmt.Printf("\nartifacts: %s/series.csv, %s/ratios.json\n", prefix, prefix)
	}
	return nil
}
