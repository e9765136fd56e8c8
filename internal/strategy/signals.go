package strategy

import (
	"time"

	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/indicator"
)

// Signals holds the four parallel event series for one run. A flag is true
// only at the bar where its crossover condition holds, never as a sustained
// state.
type Signals struct {
	ShortEnter []bool
	ShortExit  []bool
	LongEnter  []bool
	LongExit   []bool
}

func newSignals(n int) *Signals {
	return &Signals{
		ShortEnter: make([]bool, n),
		ShortExit:  make([]bool, n),
		LongEnter:  make([]bool, n),
		LongExit:   make([]bool, n),
	}
}

// Len returns the number of bars the signals cover.
func (s *Signals) Len() int {
	return len(s.ShortEnter)
}

// Line is one named indicator series, bar-aligned, returned alongside the
// signals so the report layer can render what the rules saw.
type Line struct {
	Name   string
	Values []float64
}

// Generate computes signal flags for bars under cfg, dispatching on the
// variant tag. All comparisons involving NaN are false, so no signal fires
// inside an indicator's warm-up window.
func Generate(bars []core.Bar, cfg Config) (*Signals, []Line, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	switch cfg.Variant {
	case VariantTwoMA:
		return twoMASignals(bars, cfg)
	case VariantThreeMA:
		return threeMASignals(bars, cfg)
	default:
		return stochasticSignals(bars, cfg)
	}
}

// movingAverage picks the MA flavor for the crossover variants. Validate
// guarantees the type is one of the two.
func movingAverage(closes []float64, maType MAType, period int) []float64 {
	if maType == MAExponential {
		return indicator.EMA(closes, period)
	}
	return indicator.SMA(closes, period)
}

// inHours reports whether the bar timestamp falls inside the inclusive
// trading window.
func inHours(t time.Time, startHour, endHour int) bool {
	h := t.Hour()
	return h >= startHour && h <= endHour
}
