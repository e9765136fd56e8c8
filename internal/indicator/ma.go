package indicator

// SMA calculates a Simple Moving Average over a trailing window.
// The result is aligned to the input: the first period-1 values are NaN.
func SMA(series []float64, period int) []float64 {
	return RollingMean(series, period)
}

// EMA calculates an Exponential Moving Average with span = period.
// EMA[0] = series[0]; EMA[t] = (series[t]-EMA[t-1])*multiplier + EMA[t-1]
// with multiplier = 2/(period+1). Every value is defined from the first bar,
// there is no warm-up window.
func EMA(series []float64, period int) []float64 {
	if period < 1 {
		return nanSlice(len(series))
	}
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}

	multiplier := 2.0 / float64(period+1)
	ema := series[0]
	out[0] = ema
	for i := 1; i < len(series); i++ {
		ema = (series[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out
}
