package strategy

import (
	"fmt"

	"github.com/mfaber/hindsight/internal/core"
)

// Variant selects one of the closed set of signal rules.
type Variant string

const (
	VariantTwoMA      Variant = "two_ma"
	VariantThreeMA    Variant = "three_ma"
	VariantStochastic Variant = "stochastic"
)

// MAType selects the moving average flavor used by the MA variants.
type MAType string

const (
	MASimple      MAType = "SMA"
	MAExponential MAType = "EMA"
)

// Config holds one strategy parameterization. It is immutable for the
// duration of a run.
type Config struct {
	Variant  Variant `json:"variant"`
	Interval string  `json:"interval,omitempty"` // resampling rule, e.g. "15T", "4H", "D"
	MAType   MAType  `json:"ma_type,omitempty"`  // MA variants only

	ShortPeriod int `json:"short_period,omitempty"` // two_ma, three_ma
	LongPeriod  int `json:"long_period,omitempty"`  // two_ma, three_ma
	ExitPeriod  int `json:"exit_period,omitempty"`  // three_ma only

	KPeriod int `json:"k_period,omitempty"` // stochastic only
	Smooth  int `json:"smooth,omitempty"`   // stochastic only
	DPeriod int `json:"d_period,omitempty"` // stochastic only

	// Trading window, inclusive hours of day. Entries outside the window
	// are suppressed; exits are never gated.
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`

	// Plot asks the caller to write run artifacts for the external charting
	// tool. The signal/position/ratio pipeline ignores it.
	Plot bool `json:"plot,omitempty"`
}

// Validate checks the fields the signal generator consumes. The resampling
// interval is validated where it is parsed.
func (c Config) Validate() error {
	if c.StartHour < 0 || c.EndHour > 23 || c.StartHour > c.EndHour {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("trading hours [%d,%d] must satisfy 0 <= start <= end <= 23", c.StartHour, c.EndHour))
	}

	switch c.Variant {
	case VariantTwoMA, VariantThreeMA:
		if c.MAType != MASimple && c.MAType != MAExponential {
			return core.WrapError(core.ErrInvalidConfig,
				fmt.Errorf("unsupported ma type %q, try SMA or EMA", c.MAType))
		}
		if c.ShortPeriod < 1 || c.LongPeriod < 1 {
			return core.WrapError(core.ErrInvalidConfig,
				fmt.Errorf("ma periods must be positive, got %d/%d", c.ShortPeriod, c.LongPeriod))
		}
		if c.ShortPeriod >= c.LongPeriod {
			return core.WrapError(core.ErrInvalidConfig,
				fmt.Errorf("short period %d must be less than long period %d", c.ShortPeriod, c.LongPeriod))
		}
		if c.Variant == VariantThreeMA && c.ExitPeriod < 1 {
			return core.WrapError(core.ErrInvalidConfig,
				fmt.Errorf("exit period must be positive, got %d", c.ExitPeriod))
		}
	case VariantStochastic:
		if c.KPeriod < 1 || c.Smooth < 1 || c.DPeriod < 1 {
			return core.WrapError(core.ErrInvalidConfig,
				fmt.Errorf("stochastic periods must be positive, got %d/%d/%d", c.KPeriod, c.Smooth, c.DPeriod))
		}
	default:
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("unknown strategy variant %q", c.Variant))
	}
	return nil
}

// Params returns the variant's sampled parameters as a short string,
// e.g. "8/21" for two_ma or "14/3/5" for stochastic.
func (c Config) Params() string {
	switch c.Variant {
	case VariantThreeMA:
		return fmt.Sprintf("%d/%d/%d", c.ShortPeriod, c.LongPeriod, c.ExitPeriod)
	case VariantStochastic:
		return fmt.Sprintf("%d/%d/%d", c.KPeriod, c.Smooth, c.DPeriod)
	default:
		return fmt.Sprintf("%d/%d", c.ShortPeriod, c.LongPeriod)
	}
}
