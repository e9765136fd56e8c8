package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/montecarlo"
	"github.com/mfaber/hindsight/internal/strategy"
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Binance  BinanceConfig  `mapstructure:"binance"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Search   SearchConfig   `mapstructure:"search"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type ServerConfig struct {
	Host          string  `mapstructure:"host"`
	Port          int     `mapstructure:"port"`
	APIKey        string  `mapstructure:"api_key"`
	RateLimit     float64 `mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst     int     `mapstructure:"rate_burst"`
	JobTTLMinutes int     `mapstructure:"job_ttl_minutes"`
	MaxJobs       int     `mapstructure:"max_jobs"`
}

type ArchiveConfig struct {
	Backend string   `mapstructure:"backend"` // "local" or "s3"
	Path    string   `mapstructure:"path"`    // local backend root
	S3      S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type BinanceConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// StrategyConfig is the file-level default strategy block. CLI flags and API
// request bodies override it field by field.
type StrategyConfig struct {
	Variant     string `mapstructure:"variant"`
	Interval    string `mapstructure:"interval"`
	MAType      string `mapstructure:"ma_type"`
	ShortPeriod int    `mapstructure:"short_period"`
	LongPeriod  int    `mapstructure:"long_period"`
	ExitPeriod  int    `mapstructure:"exit_period"`
	KPeriod     int    `mapstructure:"k_period"`
	Smooth      int    `mapstructure:"smooth"`
	DPeriod     int    `mapstructure:"d_period"`
	StartHour   int    `mapstructure:"start_hour"`
	EndHour     int    `mapstructure:"end_hour"`
	Plot        bool   `mapstructure:"plot"`
}

type SearchConfig struct {
	Simulations int    `mapstructure:"simulations"`
	Priority    string `mapstructure:"priority"`
	MAMin       int    `mapstructure:"ma_min"`
	MAMax       int    `mapstructure:"ma_max"`
	StochMin    int    `mapstructure:"stoch_min"`
	StochMax    int    `mapstructure:"stoch_max"`
	Seed        int64  `mapstructure:"seed"`
	Workers     int    `mapstructure:"workers"`
}

// Load reads configuration from file with HINDSIGHT_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("HINDSIGHT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, core.WrapError(core.ErrInvalidConfig, fmt.Errorf("reading config: %w", err))
	}

	// Expand ${VAR} references in string values, so secrets can live in the
	// environment while the file stays committable.
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.WrapError(core.ErrInvalidConfig, fmt.Errorf("unmarshaling config: %w", err))
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			RateLimit:     10,
			RateBurst:     20,
			JobTTLMinutes: 60,
			MaxJobs:       100,
		},
		Archive: ArchiveConfig{
			Backend: "local",
			Path:    "./artifacts",
		},
		Strategy: StrategyConfig{
			Variant:     string(strategy.VariantTwoMA),
			MAType:      string(strategy.MASimple),
			ShortPeriod: 8,
			LongPeriod:  21,
			StartHour:   0,
			EndHour:     23,
		},
		Search: SearchConfig{
			Simulations: 100,
			Priority:    string(montecarlo.PriorityReturn),
			MAMin:       montecarlo.DefaultMARange.Min,
			MAMax:       montecarlo.DefaultMARange.Max,
			StochMin:    montecarlo.DefaultStochRange.Min,
			StochMax:    montecarlo.DefaultStochRange.Max,
			Workers:     4,
		},
	}
}

// Validate checks the fields the composition root consumes. Strategy and
// search blocks are validated where they are turned into run configs.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("rate_limit cannot be negative, got %f", c.Server.RateLimit))
	}
	if c.Server.JobTTLMinutes < 1 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("job_ttl_minutes must be positive, got %d", c.Server.JobTTLMinutes))
	}
	if c.Server.MaxJobs < 1 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("max_jobs must be positive, got %d", c.Server.MaxJobs))
	}

	switch c.Archive.Backend {
	case "local":
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrInvalidConfig,
				fmt.Errorf("archive path required for the local backend"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrInvalidConfig,
				fmt.Errorf("s3 bucket required for the s3 backend"))
		}
	default:
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("unknown archive backend %q, try local or s3", c.Archive.Backend))
	}

	return nil
}

// StrategyConfig converts the file block into a run config. The result still
// goes through strategy.Config.Validate before use.
func (c *Config) StrategyConfig() strategy.Config {
	s := c.Strategy
	return strategy.Config{
		Variant:     strategy.Variant(s.Variant),
		Interval:    s.Interval,
		MAType:      strategy.MAType(s.MAType),
		ShortPeriod: s.ShortPeriod,
		LongPeriod:  s.LongPeriod,
		ExitPeriod:  s.ExitPeriod,
		KPeriod:     s.KPeriod,
		Smooth:      s.Smooth,
		DPeriod:     s.DPeriod,
		StartHour:   s.StartHour,
		EndHour:     s.EndHour,
		Plot:        s.Plot,
	}
}

// SearchConfig converts the file block into a Monte Carlo config around the
// default strategy block.
func (c *Config) SearchConfig() montecarlo.Config {
	s := c.Search
	return montecarlo.Config{
		Strategy:    c.StrategyConfig(),
		Simulations: s.Simulations,
		Priority:    montecarlo.Priority(s.Priority),
		MARange:     montecarlo.Range{Min: s.MAMin, Max: s.MAMax},
		StochRange:  montecarlo.Range{Min: s.StochMin, Max: s.StochMax},
		Seed:        s.Seed,
		Workers:     s.Workers,
	}
}
