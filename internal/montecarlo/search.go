package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mfaber/hindsight/internal/backtest"
	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/strategy"
)

// Priority selects the objective the search optimizes.
type Priority string

const (
	// PriorityReturn picks the run with the highest strategy return.
	PriorityReturn Priority = "return"
	// PriorityDrawdown picks the run with the smallest max drawdown.
	PriorityDrawdown Priority = "drawdown"
)

// Range is an inclusive integer sampling range.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Default sampling ranges: MA periods from [8,80], stochastic parameters
// from [3,20].
var (
	DefaultMARange    = Range{Min: 8, Max: 80}
	DefaultStochRange = Range{Min: 3, Max: 20}
)

// Config drives one randomized parameter search. Strategy supplies the fixed
// fields shared by every sample (variant, interval, MA type, trading hours);
// the sampled periods overwrite whatever it carries.
type Config struct {
	Strategy    strategy.Config
	Simulations int
	Priority    Priority

	// Zero-valued ranges fall back to the defaults above.
	MARange    Range
	StochRange Range

	// Seed fixes the sampling stream; 0 derives one from the clock.
	Seed int64
	// Workers bounds pipeline parallelism; values below 2 run sequentially.
	Workers int
}

// Run records one simulation: the sampled parameters and the two ratios the
// selection rule looks at. A failed simulation keeps its error and is skipped
// by selection; Overrun marks an equal-draw correction that left the declared
// sampling range.
type Run struct {
	Config         strategy.Config `json:"-"`
	Params         string          `json:"params"`
	StrategyReturn float64         `json:"strategy_return"`
	MaxDrawdown    float64         `json:"max_drawdown"`
	Overrun        bool            `json:"overrun,omitempty"`
	Err            error           `json:"-"`
}

// Failed reports whether the simulation did not produce usable ratios.
func (r Run) Failed() bool {
	return r.Err != nil
}

// Result is the outcome of a search: every run in sampling order, the index
// of the winner, and the winner's full pipeline output from the final re-run
// with artifact writing enabled.
type Result struct {
	Runs      []Run
	BestIndex int
	Best      *backtest.Result
}

// Overruns counts the runs whose sampled parameters left their range.
func (r *Result) Overruns() int {
	n := 0
	for _, run := range r.Runs {
		if run.Overrun {
			n++
		}
	}
	return n
}

// Failures counts the runs that did not complete.
func (r *Result) Failures() int {
	n := 0
	for _, run := range r.Runs {
		if run.Failed() {
			n++
		}
	}
	return n
}

func (c Config) validate() error {
	if c.Simulations < 1 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("simulations must be at least 1, got %d", c.Simulations))
	}
	if c.Priority != PriorityReturn && c.Priority != PriorityDrawdown {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("unknown priority %q, try return or drawdown", c.Priority))
	}
	for _, r := range []Range{c.maRange(), c.stochRange()} {
		if r.Min < 1 || r.Min > r.Max {
			return core.WrapError(core.ErrInvalidConfig,
				fmt.Errorf("bad sampling range [%d,%d]", r.Min, r.Max))
		}
	}
	return nil
}

func (c Config) maRange() Range {
	if c.MARange == (Range{}) {
		return DefaultMARange
	}
	return c.MARange
}

func (c Config) stochRange() Range {
	if c.StochRange == (Range{}) {
		return DefaultStochRange
	}
	return c.StochRange
}

// Search samples cfg.Simulations parameter sets, scores each one with the
// full backtest pipeline, and selects the winner by cfg.Priority (first
// index on ties). Failed simulations are recorded and skipped; the search
// errors only when every simulation failed. The winning parameters are
// re-run once with the Plot flag set and returned as Result.Best.
func Search(ctx context.Context, bars []core.Bar, cfg Config, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Parameter sets are drawn up front on one stream so the sequence only
	// depends on the seed, not on worker scheduling.
	smp := newSampler(seed)
	runs := make([]Run, cfg.Simulations)
	for i := range runs {
		sampled, overrun := smp.draw(cfg.Strategy, cfg.maRange(), cfg.stochRange())
		sampled.Plot = false
		runs[i] = Run{Config: sampled, Params: sampled.Params(), Overrun: overrun}
		if overrun {
			log.Warn("sampled period exceeds declared range",
				zap.Int("simulation", i),
				zap.String("params", sampled.Params()),
				zap.Int("range_max", cfg.maRange().Max))
		}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > cfg.Simulations {
		workers = cfg.Simulations
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				simulate(bars, &runs[i])
			}
		}()
	}

dispatch:
	for i := 0; i < cfg.Simulations; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best, err := selectBest(runs, cfg.Priority)
	if err != nil {
		return nil, err
	}

	winner := runs[best].Config
	winner.Plot = true
	final, err := backtest.Run(bars, winner)
	if err != nil && !errors.Is(err, core.ErrIndeterminate) {
		return nil, core.WrapError(core.ErrSearchFailed, err)
	}

	log.Info("search complete",
		zap.Int("simulations", cfg.Simulations),
		zap.String("priority", string(cfg.Priority)),
		zap.String("best_params", runs[best].Params),
		zap.Float64("best_return", runs[best].StrategyReturn),
		zap.Float64("best_drawdown", runs[best].MaxDrawdown))

	return &Result{Runs: runs, BestIndex: best, Best: final}, nil
}

// simulate scores one sampled parameter set. A zero-drawdown run is not a
// failure: its ratios participate in selection with the RAR left undefined.
func simulate(bars []core.Bar, run *Run) {
	res, err := backtest.Run(bars, run.Config)
	if err != nil && !errors.Is(err, core.ErrIndeterminate) {
		run.Err = err
		return
	}
	run.StrategyReturn = res.Ratios.StrategyReturn
	run.MaxDrawdown = res.Ratios.MaxDrawdown
}

func selectBest(runs []Run, priority Priority) (int, error) {
	best := -1
	for i, r := range runs {
		if r.Failed() {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		switch priority {
		case PriorityDrawdown:
			if r.MaxDrawdown < runs[best].MaxDrawdown {
				best = i
			}
		default:
			if r.StrategyReturn > runs[best].StrategyReturn {
				best = i
			}
		}
	}
	if best < 0 {
		return 0, core.WrapError(core.ErrSearchFailed,
			fmt.Errorf("all %d simulations failed", len(runs)))
	}
	return best, nil
}
