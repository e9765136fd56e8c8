package strategy

import (
	"testing"
	"time"

	"github.com/mfaber/hindsight/internal/core"
)

// hourlyBars places closes on consecutive hourly bars starting at 10:00, so
// bar i carries hour-of-day 10+i (mod 24).
func hourlyBars(closes []float64) []core.Bar {
	t0, _ := time.Parse("2006-01-02 15:04", "2017-03-06 10:00")
	bars := make([]core.Bar, len(closes))
	for i, c := range closes {
		bars[i] = core.Bar{
			Time: t0.Add(time.Duration(i) * time.Hour),
			Open: c, High: c + 0.005, Low: c - 0.005, Close: c, Volume: 100,
		}
	}
	return bars
}

func ohlcBars(high, low, close []float64) []core.Bar {
	t0, _ := time.Parse("2006-01-02 15:04", "2017-03-06 10:00")
	bars := make([]core.Bar, len(close))
	for i := range close {
		bars[i] = core.Bar{
			Time: t0.Add(time.Duration(i) * time.Hour),
			Open: close[i], High: high[i], Low: low[i], Close: close[i], Volume: 100,
		}
	}
	return bars
}

var crossoverCloses = []float64{1.0, 1.01, 1.02, 1.00, 0.99, 1.03, 1.05, 1.04, 1.06, 1.08}

func flaggedBars(flags []bool) []int {
	var out []int
	for i, f := range flags {
		if f {
			out = append(out, i)
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTwoMASignals_Crossovers(t *testing.T) {
	// SMA(2) crosses below SMA(4) at bar 4 and back above at bar 6.
	cfg := Config{
		Variant: VariantTwoMA, MAType: MASimple,
		ShortPeriod: 2, LongPeriod: 4,
		StartHour: 0, EndHour: 23,
	}

	sig, lines, err := Generate(hourlyBars(crossoverCloses), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := flaggedBars(sig.ShortEnter); !equalInts(got, []int{4}) {
		t.Errorf("short enter at %v, want [4]", got)
	}
	if got := flaggedBars(sig.ShortExit); !equalInts(got, []int{6}) {
		t.Errorf("short exit at %v, want [6]", got)
	}
	if got := flaggedBars(sig.LongEnter); !equalInts(got, []int{6}) {
		t.Errorf("long enter at %v, want [6]", got)
	}
	if got := flaggedBars(sig.LongExit); !equalInts(got, []int{4}) {
		t.Errorf("long exit at %v, want [4]", got)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 indicator lines, got %d", len(lines))
	}
}

func TestTwoMASignals_HourGateEntriesOnly(t *testing.T) {
	// Bar 4 falls at 14:00 and bar 6 at 16:00. A window ending at 13 blocks
	// both entries, but the ungated exits still fire.
	cfg := Config{
		Variant: VariantTwoMA, MAType: MASimple,
		ShortPeriod: 2, LongPeriod: 4,
		StartHour: 0, EndHour: 13,
	}

	sig, _, err := Generate(hourlyBars(crossoverCloses), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(flaggedBars(sig.ShortEnter)) != 0 || len(flaggedBars(sig.LongEnter)) != 0 {
		t.Error("entries should be suppressed outside trading hours")
	}
	if got := flaggedBars(sig.ShortExit); !equalInts(got, []int{6}) {
		t.Errorf("short exit at %v, want [6] despite the hour gate", got)
	}
	if got := flaggedBars(sig.LongExit); !equalInts(got, []int{4}) {
		t.Errorf("long exit at %v, want [4] despite the hour gate", got)
	}
}

func TestTwoMASignals_NoFireDuringWarmup(t *testing.T) {
	cfg := Config{
		Variant: VariantTwoMA, MAType: MASimple,
		ShortPeriod: 2, LongPeriod: 4,
		StartHour: 0, EndHour: 23,
	}

	sig, _, err := Generate(hourlyBars(crossoverCloses), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The long MA is undefined before bar 3, so nothing can fire there.
	for i := 0; i < 4; i++ {
		if sig.ShortEnter[i] || sig.ShortExit[i] || sig.LongEnter[i] || sig.LongExit[i] {
			t.Errorf("signal fired at warm-up bar %d", i)
		}
	}
}

func TestThreeMASignals_ExitOnExitMA(t *testing.T) {
	// Entries match the two-MA variant (short enter bar 4, long enter bar
	// 6); exits come from SMA(3) crossing SMA(2): below at bars 5 and 9
	// (long exit), above at bar 8 (short exit).
	cfg := Config{
		Variant: VariantThreeMA, MAType: MASimple,
		ShortPeriod: 2, LongPeriod: 4, ExitPeriod: 3,
		StartHour: 0, EndHour: 23,
	}

	sig, lines, err := Generate(hourlyBars(crossoverCloses), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := flaggedBars(sig.ShortEnter); !equalInts(got, []int{4}) {
		t.Errorf("short enter at %v, want [4]", got)
	}
	if got := flaggedBars(sig.LongEnter); !equalInts(got, []int{6}) {
		t.Errorf("long enter at %v, want [6]", got)
	}
	if got := flaggedBars(sig.ShortExit); !equalInts(got, []int{8}) {
		t.Errorf("short exit at %v, want [8]", got)
	}
	if got := flaggedBars(sig.LongExit); !equalInts(got, []int{5, 9}) {
		t.Errorf("long exit at %v, want [5 9]", got)
	}

	if len(lines) != 3 {
		t.Fatalf("expected 3 indicator lines, got %d", len(lines))
	}
}

func TestStochasticSignals(t *testing.T) {
	// A down-up-down price wave: %K crosses above %D at bar 7 while deeply
	// oversold (long enter) and below %D at bar 12 while overbought (short
	// enter). The same crossovers double as the opposite side's exits.
	high := []float64{10.5, 11.5, 12.5, 13.5, 12.6, 11.4, 10.4, 9.6, 10.6, 11.8, 12.9, 13.9, 14.1, 13.0, 12.2, 11.2}
	low := []float64{9.5, 10.5, 11.5, 12.5, 11.4, 10.2, 9.2, 8.4, 9.4, 10.6, 11.7, 12.7, 12.9, 11.8, 11.0, 10.0}
	close := []float64{10.0, 11.0, 12.4, 13.4, 11.6, 10.4, 9.4, 8.6, 10.4, 11.6, 12.8, 13.8, 14.0, 12.0, 11.2, 10.2}

	cfg := Config{
		Variant: VariantStochastic,
		KPeriod: 3, Smooth: 2, DPeriod: 2,
		StartHour: 0, EndHour: 23,
	}

	sig, lines, err := Generate(ohlcBars(high, low, close), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := flaggedBars(sig.LongEnter); !equalInts(got, []int{7}) {
		t.Errorf("long enter at %v, want [7]", got)
	}
	if got := flaggedBars(sig.ShortEnter); !equalInts(got, []int{12}) {
		t.Errorf("short enter at %v, want [12]", got)
	}
	if got := flaggedBars(sig.ShortExit); !equalInts(got, []int{7}) {
		t.Errorf("short exit at %v, want [7]", got)
	}
	if got := flaggedBars(sig.LongExit); !equalInts(got, []int{12}) {
		t.Errorf("long exit at %v, want [12]", got)
	}

	if len(lines) != 2 || lines[0].Name != "%K" || lines[1].Name != "%D" {
		t.Errorf("unexpected indicator lines: %v", lines)
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	bars := hourlyBars(crossoverCloses)
	cfg := Config{Variant: "unknown"}
	if _, _, err := Generate(bars, cfg); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}
