package indicator

import "math"

// nanSlice returns a slice of n NaN values.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// RollingMean calculates a trailing mean over a window of period values.
// The result is aligned to the input: the first period-1 values are NaN,
// and any window containing a NaN yields NaN.
func RollingMean(series []float64, period int) []float64 {
	out := nanSlice(len(series))
	if period < 1 || len(series) < period {
		return out
	}

	var sum float64
	nans := 0
	for i, v := range series {
		if math.IsNaN(v) {
			nans++
		} else {
			sum += v
		}
		if i >= period {
			old := series[i-period]
			if math.IsNaN(old) {
				nans--
			} else {
				sum -= old
			}
		}
		if i >= period-1 && nans == 0 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RollingMin calculates a trailing minimum over a window of period values,
// with the same alignment and NaN rules as RollingMean.
func RollingMin(series []float64, period int) []float64 {
	out := nanSlice(len(series))
	if period < 1 || len(series) < period {
		return out
	}

	for i := period - 1; i < len(series); i++ {
		m := math.Inf(1)
		defined := true
		for j := i - period + 1; j <= i; j++ {
			v := series[j]
			if math.IsNaN(v) {
				defined = false
				break
			}
			if v < m {
				m = v
			}
		}
		if defined {
			out[i] = m
		}
	}
	return out
}

// RollingMax calculates a trailing maximum over a window of period values,
// with the same alignment and NaN rules as RollingMean.
func RollingMax(series []float64, period int) []float64 {
	out := nanSlice(len(series))
	if period < 1 || len(series) < period {
		return out
	}

	for i := period - 1; i < len(series); i++ {
		m := math.Inf(-1)
		defined := true
		for j := i - period + 1; j <= i; j++ {
			v := series[j]
			if math.IsNaN(v) {
				defined = false
				break
			}
			if v > m {
				m = v
			}
		}
		if defined {
			out[i] = m
		}
	}
	return out
}
