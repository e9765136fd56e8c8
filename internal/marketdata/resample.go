package marketdata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mfaber/hindsight/internal/core"
)

// ParseInterval parses a resampling rule string into a duration. A rule is an
// optional integer multiple followed by a unit: "D" (day), "H" (hour), "T" or
// "MIN" (minute), case-insensitive. "15T", "4H" and "D" are all valid.
func ParseInterval(rule string) (time.Duration, error) {
	s := strings.ToUpper(strings.TrimSpace(rule))
	if s == "" {
		return 0, core.WrapError(core.ErrInvalidConfig, fmt.Errorf("empty interval rule"))
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	mult := 1
	if i > 0 {
		n, err := strconv.Atoi(s[:i])
		if err != nil || n < 1 {
			return 0, core.WrapError(core.ErrInvalidConfig, fmt.Errorf("bad interval multiple in %q", rule))
		}
		mult = n
	}

	var unit time.Duration
	switch s[i:] {
	case "D":
		unit = 24 * time.Hour
	case "H":
		unit = time.Hour
	case "T", "MIN":
		unit = time.Minute
	default:
		return 0, core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("unknown interval unit in %q, try D, H, T or MIN", rule))
	}
	return time.Duration(mult) * unit, nil
}

// Resample reduces bars to a coarser time grid using snapshot semantics: the
// grid starts at the first bar's timestamp truncated (UTC) to the interval and
// steps by the interval while it does not pass the last bar; each grid point
// takes the entire row of the first input bar at or after that point. The
// input slice is never mutated.
func Resample(bars []core.Bar, rule string) ([]core.Bar, error) {
	interval, err := ParseInterval(rule)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateBars(bars); err != nil {
		return nil, err
	}

	first := bars[0].Time.UTC()
	last := bars[len(bars)-1].Time.UTC()
	grid := first.Truncate(interval)

	var out []core.Bar
	j := 0
	for !grid.After(last) {
		for bars[j].Time.UTC().Before(grid) {
			j++
		}
		b := bars[j]
		b.Time = grid
		out = append(out, b)
		grid = grid.Add(interval)
	}
	return out, nil
}
