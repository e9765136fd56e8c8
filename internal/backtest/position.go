package backtest

import "github.com/mfaber/hindsight/internal/strategy"

// ResolvePositions converts signal flags into a position series using two
// independent forward-filled state machines. The short side holds -1 from a
// ShortEnter bar until a ShortExit bar, the long side holds 1 symmetrically,
// and the position is their sum. When an enter and an exit fire on the same
// bar the exit wins. Bar 0 is forced flat regardless of signals there.
//
// A long and a short state can be active at once; the sum then cancels to 0
// instead of reporting a conflict. That mirrors the source rules and is kept
// as observable behavior.
func ResolvePositions(sig *strategy.Signals) []int {
	n := sig.Len()
	pos := make([]int, n)
	if n == 0 {
		return pos
	}

	short, long := 0, 0
	for i := 1; i < n; i++ {
		if sig.ShortEnter[i] {
			short = -1
		}
		if sig.ShortExit[i] {
			short = 0
		}
		if sig.LongEnter[i] {
			long = 1
		}
		if sig.LongExit[i] {
			long = 0
		}
		pos[i] = short + long
	}
	return pos
}
