package strategy

import (
	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/indicator"
)

// Stochastic threshold levels on the smoothed %K line.
const (
	overbought = 80.0
	oversold   = 20.0
)

// stochasticSignals derives signals from %K/%D crossovers. Entries
// additionally require %K beyond the overbought/oversold threshold on the
// crossover bar; exits fire on the bare reverse crossover.
func stochasticSignals(bars []core.Bar, cfg Config) (*Signals, []Line, error) {
	k := indicator.StochasticK(core.Highs(bars), core.Lows(bars), core.Closes(bars), cfg.KPeriod, cfg.Smooth)
	d := indicator.StochasticD(k, cfg.DPeriod)

	sig := newSignals(len(bars))
	for i := 1; i < len(bars); i++ {
		crossedDown := k[i] < d[i] && k[i-1] > d[i-1]
		crossedUp := k[i] > d[i] && k[i-1] < d[i-1]
		tradable := inHours(bars[i].Time, cfg.StartHour, cfg.EndHour)

		sig.ShortEnter[i] = crossedDown && k[i] > overbought && tradable
		sig.ShortExit[i] = crossedUp
		sig.LongEnter[i] = crossedUp && k[i] < oversold && tradable
		sig.LongExit[i] = crossedDown
	}

	lines := []Line{
		{Name: "%K", Values: k},
		{Name: "%D", Values: d},
	}
	return sig, lines, nil
}
