package core

import (
	"fmt"
	"math"
	"time"
)

// Bar represents one OHLCV row at a fixed timestamp.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// IsValid checks that the bar has a timestamp, finite prices and a
// non-negative finite volume.
func (b Bar) IsValid() bool {
	if b.Time.IsZero() {
		return false
	}
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.Volume >= 0
}

// ValidateBars checks that a bar slice is non-empty, every bar is valid and
// timestamps are strictly increasing.
func ValidateBars(bars []Bar) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	for i, b := range bars {
		if !b.IsValid() {
			return WrapError(ErrDataFormat, fmt.Errorf("bar %d invalid", i))
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return WrapError(ErrDataFormat, fmt.Errorf("bar %d: timestamp %s not after %s",
				i, b.Time.Format(time.RFC3339), bars[i-1].Time.Format(time.RFC3339)))
		}
	}
	return nil
}

// Closes extracts the close column from a bar slice.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high column from a bar slice.
func Highs(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column from a bar slice.
func Lows(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}
