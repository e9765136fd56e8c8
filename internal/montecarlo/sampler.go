package montecarlo

import (
	"math/rand"

	"github.com/mfaber/hindsight/internal/strategy"
)

// sampler draws parameter sets from a single seeded stream. All draws happen
// in iteration order before any simulation runs, so a fixed seed yields the
// same parameter sequence no matter how many workers execute the pipeline.
type sampler struct {
	rng *rand.Rand
}

func newSampler(seed int64) *sampler {
	return &sampler{rng: rand.New(rand.NewSource(seed))}
}

func (s *sampler) intIn(r Range) int {
	return r.Min + s.rng.Intn(r.Max-r.Min+1)
}

// draw produces one sampled strategy config on top of the fixed base fields.
// MA periods are ordered so the short one is strictly smaller; an equal draw
// bumps the long period by one without re-checking the bound, which can push
// it past the range. That overrun is reported, never corrected away.
func (s *sampler) draw(base strategy.Config, ma, stoch Range) (strategy.Config, bool) {
	cfg := base
	overrun := false

	switch base.Variant {
	case strategy.VariantStochastic:
		cfg.KPeriod = s.intIn(stoch)
		cfg.Smooth = s.intIn(stoch)
		cfg.DPeriod = s.intIn(stoch)
	default:
		short, long := s.intIn(ma), s.intIn(ma)
		if short > long {
			short, long = long, short
		}
		if short == long {
			long++
			if long > ma.Max {
				overrun = true
			}
		}
		cfg.ShortPeriod = short
		cfg.LongPeriod = long
		if base.Variant == strategy.VariantThreeMA {
			cfg.ExitPeriod = s.intIn(ma)
		}
	}
	return cfg, overrun
}
