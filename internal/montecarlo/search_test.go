package montecarlo

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/strategy"
)

// waveBars builds a deterministic oscillating price series long enough for
// small MA periods to produce real crossovers.
func waveBars(n int) []core.Bar {
	t0, _ := time.Parse("2006-01-02 15:04", "2017-03-06 00:00")
	bars := make([]core.Bar, n)
	for i := range bars {
		c := 1.0 + 0.05*math.Sin(float64(i)/7) + 0.0002*float64(i)
		bars[i] = core.Bar{
			Time: t0.Add(time.Duration(i) * time.Hour),
			Open: c, High: c + 0.002, Low: c - 0.002, Close: c, Volume: 100,
		}
	}
	return bars
}

func searchConfig(sims int, priority Priority) Config {
	return Config{
		Strategy: strategy.Config{
			Variant:   strategy.VariantTwoMA,
			MAType:    strategy.MASimple,
			StartHour: 0,
			EndHour:   23,
		},
		Simulations: sims,
		Priority:    priority,
		MARange:     Range{Min: 2, Max: 12},
		Seed:        42,
		Workers:     1,
	}
}

func TestSampler_Deterministic(t *testing.T) {
	base := searchConfig(1, PriorityReturn).Strategy
	a := newSampler(7)
	b := newSampler(7)

	for i := 0; i < 50; i++ {
		ca, oa := a.draw(base, DefaultMARange, DefaultStochRange)
		cb, ob := b.draw(base, DefaultMARange, DefaultStochRange)
		require.Equal(t, ca, cb, "draw %d differs", i)
		require.Equal(t, oa, ob, "overrun flag %d differs", i)
	}
}

func TestSampler_OrdersPeriods(t *testing.T) {
	base := searchConfig(1, PriorityReturn).Strategy
	s := newSampler(1)

	for i := 0; i < 200; i++ {
		cfg, overrun := s.draw(base, DefaultMARange, DefaultStochRange)
		assert.Less(t, cfg.ShortPeriod, cfg.LongPeriod, "draw %d not ordered", i)
		assert.GreaterOrEqual(t, cfg.ShortPeriod, 8)
		if !overrun {
			assert.LessOrEqual(t, cfg.LongPeriod, 80)
		}
	}
}

func TestSampler_EqualDrawOverrun(t *testing.T) {
	base := searchConfig(1, PriorityReturn).Strategy
	s := newSampler(1)

	// A degenerate range forces an equal draw: the long period is bumped to
	// short+1 past the declared bound and the overrun is flagged.
	cfg, overrun := s.draw(base, Range{Min: 8, Max: 8}, DefaultStochRange)
	assert.True(t, overrun)
	assert.Equal(t, 8, cfg.ShortPeriod)
	assert.Equal(t, 9, cfg.LongPeriod)
}

func TestSampler_ThreeMADrawsExitPeriod(t *testing.T) {
	base := searchConfig(1, PriorityReturn).Strategy
	base.Variant = strategy.VariantThreeMA
	s := newSampler(3)

	for i := 0; i < 100; i++ {
		cfg, _ := s.draw(base, DefaultMARange, DefaultStochRange)
		assert.GreaterOrEqual(t, cfg.ExitPeriod, 8)
		assert.LessOrEqual(t, cfg.ExitPeriod, 80)
	}
}

func TestSampler_StochasticRanges(t *testing.T) {
	base := searchConfig(1, PriorityReturn).Strategy
	base.Variant = strategy.VariantStochastic
	base.MAType = ""
	s := newSampler(9)

	for i := 0; i < 100; i++ {
		cfg, overrun := s.draw(base, DefaultMARange, DefaultStochRange)
		assert.False(t, overrun)
		for _, p := range []int{cfg.KPeriod, cfg.Smooth, cfg.DPeriod} {
			assert.GreaterOrEqual(t, p, 3)
			assert.LessOrEqual(t, p, 20)
		}
	}
}

func TestSearch_SelectsHighestReturn(t *testing.T) {
	res, err := Search(context.Background(), waveBars(400), searchConfig(25, PriorityReturn), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, res.Runs, 25)

	best := res.Runs[res.BestIndex]
	require.False(t, best.Failed())
	for i, r := range res.Runs {
		if r.Failed() {
			continue
		}
		assert.GreaterOrEqual(t, best.StrategyReturn, r.StrategyReturn, "run %d beats the winner", i)
	}
}

func TestSearch_SelectsLowestDrawdown(t *testing.T) {
	res, err := Search(context.Background(), waveBars(400), searchConfig(25, PriorityDrawdown), zap.NewNop())
	require.NoError(t, err)

	best := res.Runs[res.BestIndex]
	for i, r := range res.Runs {
		if r.Failed() {
			continue
		}
		assert.LessOrEqual(t, best.MaxDrawdown, r.MaxDrawdown, "run %d beats the winner", i)
	}
}

func TestSearch_SingleSimulation(t *testing.T) {
	// One simulation reduces to a single deterministic backtest: the best
	// run is the only run.
	res, err := Search(context.Background(), waveBars(400), searchConfig(1, PriorityReturn), zap.NewNop())
	require.NoError(t, err)

	require.Len(t, res.Runs, 1)
	assert.Equal(t, 0, res.BestIndex)
	require.NotNil(t, res.Best)
	assert.Equal(t, res.Runs[0].Params, res.Best.Config.Params())
	assert.True(t, res.Best.Config.Plot, "the winning re-run should request artifacts")
}

func TestSearch_WorkerCountDoesNotChangeOutcome(t *testing.T) {
	bars := waveBars(400)

	seq := searchConfig(20, PriorityReturn)
	par := searchConfig(20, PriorityReturn)
	par.Workers = 4

	a, err := Search(context.Background(), bars, seq, zap.NewNop())
	require.NoError(t, err)
	b, err := Search(context.Background(), bars, par, zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, a.BestIndex, b.BestIndex)
	for i := range a.Runs {
		assert.Equal(t, a.Runs[i].Params, b.Runs[i].Params, "run %d sampled differently", i)
		assert.Equal(t, a.Runs[i].StrategyReturn, b.Runs[i].StrategyReturn)
		assert.Equal(t, a.Runs[i].MaxDrawdown, b.Runs[i].MaxDrawdown)
	}
}

func TestSearch_InvalidConfig(t *testing.T) {
	bars := waveBars(50)

	cfg := searchConfig(0, PriorityReturn)
	_, err := Search(context.Background(), bars, cfg, zap.NewNop())
	assert.ErrorIs(t, err, core.ErrInvalidConfig, "zero simulations")

	cfg = searchConfig(5, "sharpe")
	_, err = Search(context.Background(), bars, cfg, zap.NewNop())
	assert.ErrorIs(t, err, core.ErrInvalidConfig, "unknown priority")

	cfg = searchConfig(5, PriorityReturn)
	cfg.MARange = Range{Min: 20, Max: 10}
	_, err = Search(context.Background(), bars, cfg, zap.NewNop())
	assert.ErrorIs(t, err, core.ErrInvalidConfig, "inverted range")
}

func TestSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Search(ctx, waveBars(400), searchConfig(50, PriorityReturn), zap.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_Counters(t *testing.T) {
	res := &Result{Runs: []Run{
		{Overrun: true},
		{Err: errors.New("boom")},
		{},
		{Overrun: true, Err: errors.New("boom")},
	}}
	assert.Equal(t, 2, res.Overruns())
	assert.Equal(t, 2, res.Failures())
}
