package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mfaber/hindsight/internal/config"
	"github.com/mfaber/hindsight/internal/logger"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "hindsight",
	Short: "hindsight - rule-based trading strategy backtester",
	Long: `hindsight runs moving-average and stochastic trading strategies against
historical price bars, scores them with performance ratios, and searches
parameter space with randomized simulations.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// loadConfig reads the config file when one is given, otherwise defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the CLI logger. --debug forces development console
// output at debug level regardless of the config file.
func newLogger(cfg *config.Config) *zap.Logger {
	level := cfg.Log.Level
	development := cfg.Log.Development
	if debug {
		level = "debug"
		development = true
	}
	return logger.Must(level, development)
}

func main() {
	// Optional .env for credentials; absence is not an error.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
