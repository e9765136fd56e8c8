package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mfaber/hindsight/internal/marketdata"
)

var (
	fetchInterval string
	fetchFrom     string
	fetchTo       string
	fetchLimit    int
	fetchOut      string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [symbol]",
	Short: "Download historical klines from Binance",
	Long: `Fetch historical candles for a symbol from the Binance spot API and
write them as a prepared CSV ready for the backtest and search commands.
Public kline data needs no credentials.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetchCmd,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchInterval, "interval", "1h", "kline interval (Binance notation, e.g. 1m, 1h, 4h, 1d)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date YYYY-MM-DD (required)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date YYYY-MM-DD (default today)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "max rows, 0 = unlimited")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "output file (default <symbol>_<interval>.csv)")

	fetchCmd.MarkFlagRequired("from")

	rootCmd.AddCommand(fetchCmd)
}

func runFetchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	symbol := strings.ToUpper(args[0])

	start, err := time.Parse("2006-01-02", fetchFrom)
	if err != nil {
		return fmt.Errorf("invalid from date (expected YYYY-MM-DD): %w", err)
	}
	end := time.Now().UTC()
	if fetchTo != "" {
		end, err = time.Parse("2006-01-02", fetchTo)
		if err != nil {
			return fmt.Errorf("invalid to date (expected YYYY-MM-DD): %w", err)
		}
		// Make the end date inclusive.
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return fmt.Errorf("end date must be after start date")
	}

	client := marketdata.NewBinanceClient(cfg.Binance.APIKey, cfg.Binance.APISecret)

	log.Info("fetching klines",
		zap.String("symbol", symbol),
		zap.String("interval", fetchInterval),
		zap.Time("from", start),
		zap.Time("to", end),
	)

	bars, err := client.Klines(cmd.Context(), symbol, fetchInterval, start, end, fetchLimit)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("no klines returned for %s %s", symbol, fetchInterval)
	}

	out := fetchOut
	if out == "" {
		out = fmt.Sprintf("%s_%s.csv", strings.ToLower(symbol), fetchInterval)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := marketdata.WriteCSV(f, bars); err != nil {
		return err
	}

	fmt.Printf("wrote %d bars to %s\n", len(bars), out)
	return nil
}
