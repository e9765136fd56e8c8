package report

import (
	"math"
	"time"

	"github.com/mfaber/hindsight/internal/backtest"
)

// DailyEquity is one calendar day of strategy performance: the day's summed
// return and the additive equity level at its close.
type DailyEquity struct {
	Day    time.Time `json:"day"`
	Return float64   `json:"return"`
	Equity float64   `json:"equity"`
}

// ComputeDailyEquity buckets the per-bar strategy returns by UTC calendar day
// and accumulates them into an additive equity curve, one point per day with
// at least one bar. NaN returns contribute nothing.
func ComputeDailyEquity(res *backtest.Result) []DailyEquity {
	var out []DailyEquity
	equity := 1.0

	for i, bar := range res.Bars {
		day := bar.Time.UTC().Truncate(24 * time.Hour)
		if len(out) == 0 || !out[len(out)-1].Day.Equal(day) {
			out = append(out, DailyEquity{Day: day, Equity: equity})
		}

		r := res.StrategyReturn[i]
		if math.IsNaN(r) {
			continue
		}
		p := &out[len(out)-1]
		p.Return += r
		equity += r
		p.Equity = equity
	}
	return out
}

// Tally counts position-holding bars by the sign of their strategy return,
// with each count's percentage share of the tally's total.
type Tally struct {
	Profit  int `json:"profit"`
	Loss    int `json:"loss"`
	Neutral int `json:"neutral"`

	ProfitPct  float64 `json:"profit_pct"`
	LossPct    float64 `json:"loss_pct"`
	NeutralPct float64 `json:"neutral_pct"`
}

func (t *Tally) add(r float64) {
	switch {
	case r > 0:
		t.Profit++
	case r < 0:
		t.Loss++
	default:
		t.Neutral++
	}
}

func (t *Tally) finalize() {
	total := t.Profit + t.Loss + t.Neutral
	if total == 0 {
		return
	}
	t.ProfitPct = float64(t.Profit) / float64(total) * 100
	t.LossPct = float64(t.Loss) / float64(total) * 100
	t.NeutralPct = float64(t.Neutral) / float64(total) * 100
}

// TransactionStats breaks the in-position bars down by weekday (Monday
// through Friday) and by month. Every group is always present; groups with no
// bars carry zero counts and zero percentages.
type TransactionStats struct {
	Weekday map[time.Weekday]Tally `json:"weekday"`
	Month   map[time.Month]Tally   `json:"month"`
}

// ComputeTransactionStats tallies every bar held in a position. A bar counts
// as profitable when its strategy return is positive, losing when negative,
// neutral otherwise.
func ComputeTransactionStats(res *backtest.Result) TransactionStats {
	weekday := map[time.Weekday]*Tally{}
	for d := time.Monday; d <= time.Friday; d++ {
		weekday[d] = &Tally{}
	}
	month := map[time.Month]*Tally{}
	for m := time.January; m <= time.December; m++ {
		month[m] = &Tally{}
	}

	for i := range res.Bars {
		if res.Position[i] == 0 {
			continue
		}
		t := res.Bars[i].Time.UTC()
		r := res.StrategyReturn[i]
		if wt, ok := weekday[t.Weekday()]; ok {
			wt.add(r)
		}
		month[t.Month()].add(r)
	}

	stats := TransactionStats{
		Weekday: make(map[time.Weekday]Tally, len(weekday)),
		Month:   make(map[time.Month]Tally, len(month)),
	}
	for d, t := range weekday {
		t.finalize()
		stats.Weekday[d] = *t
	}
	for m, t := range month {
		t.finalize()
		stats.Month[m] = *t
	}
	return stats
}
