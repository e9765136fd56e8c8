package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mfaber/hindsight/internal/core"
)

// Dukascopy exports name their time column "Gmt time" with a day-first
// layout; files written back by WriteCSV use "Date" with an ISO-like layout.
const (
	dukascopyTimeCol = "Gmt time"
	preparedTimeCol  = "Date"

	dukascopyLayout = "02.01.2006 15:04:05.000"
	preparedLayout  = "2006-01-02 15:04:05"
)

// ParseCSV reads OHLCV bars from r. The header's first column decides the
// time format: "Gmt time" for a raw Dukascopy export, "Date" for an already
// prepared file. Rows must be strictly increasing in time.
func ParseCSV(r io.Reader) ([]core.Bar, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, core.WrapError(core.ErrDataFormat, fmt.Errorf("reading header: %w", err))
	}
	if len(header) < 6 {
		return nil, core.WrapError(core.ErrDataFormat,
			fmt.Errorf("expected at least 6 columns, got %d", len(header)))
	}

	var layout string
	switch header[0] {
	case dukascopyTimeCol:
		layout = dukascopyLayout
	case preparedTimeCol:
		layout = preparedLayout
	default:
		return nil, core.WrapError(core.ErrDataFormat,
			fmt.Errorf("unknown time column %q, want %q or %q", header[0], dukascopyTimeCol, preparedTimeCol))
	}

	var bars []core.Bar
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.WrapError(core.ErrDataFormat, fmt.Errorf("row %d: %w", row, err))
		}
		if len(rec) < 6 {
			return nil, core.WrapError(core.ErrDataFormat,
				fmt.Errorf("row %d: expected 6 fields, got %d", row, len(rec)))
		}

		ts, err := time.ParseInLocation(layout, rec[0], time.UTC)
		if err != nil {
			return nil, core.WrapError(core.ErrDataFormat, fmt.Errorf("row %d: bad timestamp: %w", row, err))
		}

		var vals [5]float64
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, core.WrapError(core.ErrDataFormat,
					fmt.Errorf("row %d: bad %s value %q", row, header[i+1], rec[i+1]))
			}
			vals[i] = v
		}

		bars = append(bars, core.Bar{
			Time:   ts,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}

	if err := core.ValidateBars(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// LoadCSV reads OHLCV bars from a file on disk.
func LoadCSV(path string) ([]core.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrDataFormat, err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// WriteCSV writes bars in the prepared "Date,..." form that ParseCSV accepts.
func WriteCSV(w io.Writer, bars []core.Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{preparedTimeCol, "Open", "High", "Low", "Close", "Volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		rec := []string{
			b.Time.UTC().Format(preparedLayout),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
