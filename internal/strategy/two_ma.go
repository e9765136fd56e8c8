package strategy

import (
	"fmt"

	"github.com/mfaber/hindsight/internal/core"
)

// twoMASignals derives signals from a short/long moving average pair.
// Short side enters when the short MA crosses below the long MA and exits on
// the reverse crossover; the long side is symmetric. The trading-hour gate
// applies to entries only.
func twoMASignals(bars []core.Bar, cfg Config) (*Signals, []Line, error) {
	closes := core.Closes(bars)
	shortMA := movingAverage(closes, cfg.MAType, cfg.ShortPeriod)
	longMA := movingAverage(closes, cfg.MAType, cfg.LongPeriod)

	sig := newSignals(len(bars))
	for i := 1; i < len(bars); i++ {
		crossedDown := shortMA[i] < longMA[i] && shortMA[i-1] > longMA[i-1]
		crossedUp := shortMA[i] > longMA[i] && shortMA[i-1] < longMA[i-1]
		tradable := inHours(bars[i].Time, cfg.StartHour, cfg.EndHour)

		sig.ShortEnter[i] = crossedDown && tradable
		sig.ShortExit[i] = crossedUp
		sig.LongEnter[i] = crossedUp && tradable
		sig.LongExit[i] = crossedDown
	}

	lines := []Line{
		{Name: fmt.Sprintf("short %s(%d)", cfg.MAType, cfg.ShortPeriod), Values: shortMA},
		{Name: fmt.Sprintf("long %s(%d)", cfg.MAType, cfg.LongPeriod), Values: longMA},
	}
	return sig, lines, nil
}
