package strategy

import (
	"fmt"

	"github.com/mfaber/hindsight/internal/core"
)

// threeMASignals enters exactly like the two-MA variant but exits on a
// dedicated exit MA crossing the short MA: short positions close when the
// exit MA crosses above the short MA, long positions when it crosses below.
func threeMASignals(bars []core.Bar, cfg Config) (*Signals, []Line, error) {
	closes := core.Closes(bars)
	shortMA := movingAverage(closes, cfg.MAType, cfg.ShortPeriod)
	longMA := movingAverage(closes, cfg.MAType, cfg.LongPeriod)
	exitMA := movingAverage(closes, cfg.MAType, cfg.ExitPeriod)

	sig := newSignals(len(bars))
	for i := 1; i < len(bars); i++ {
		crossedDown := shortMA[i] < longMA[i] && shortMA[i-1] > longMA[i-1]
		crossedUp := shortMA[i] > longMA[i] && shortMA[i-1] < longMA[i-1]
		exitUp := exitMA[i] > shortMA[i] && exitMA[i-1] < shortMA[i-1]
		exitDown := exitMA[i] < shortMA[i] && exitMA[i-1] > shortMA[i-1]
		tradable := inHours(bars[i].Time, cfg.StartHour, cfg.EndHour)

		sig.ShortEnter[i] = crossedDown && tradable
		sig.ShortExit[i] = exitUp
		sig.LongEnter[i] = crossedUp && tradable
		sig.LongExit[i] = exitDown
	}

	lines := []Line{
		{Name: fmt.Sprintf("short %s(%d)", cfg.MAType, cfg.ShortPeriod), Values: shortMA},
		{Name: fmt.Sprintf("long %s(%d)", cfg.MAType, cfg.LongPeriod), Values: longMA},
		{Name: fmt.Sprintf("exit %s(%d)", cfg.MAType, cfg.ExitPeriod), Values: exitMA},
	}
	return sig, lines, nil
}
