package indicator

import "math"

// StochasticK calculates the smoothed %K line of a full stochastic
// oscillator. Raw %K = 100 * (Close - RollingMin(Low, kPeriod)) /
// (RollingMax(High, kPeriod) - RollingMin(Low, kPeriod)), then smoothed by a
// trailing mean of width smooth. A bar whose high/low range is zero (flat
// market) stays NaN; the NaN propagates through the smoothing window.
func StochasticK(high, low, close []float64, kPeriod, smooth int) []float64 {
	lowest := RollingMin(low, kPeriod)
	highest := RollingMax(high, kPeriod)

	raw := make([]float64, len(close))
	for i := range close {
		rng := highest[i] - lowest[i]
		if rng == 0 {
			raw[i] = math.NaN()
			continue
		}
		raw[i] = 100 * (close[i] - lowest[i]) / rng
	}
	return RollingMean(raw, smooth)
}

// StochasticD calculates the %D line: a trailing mean of the smoothed %K
// over dPeriod bars.
func StochasticD(k []float64, dPeriod int) []float64 {
	return RollingMean(k, dPeriod)
}
