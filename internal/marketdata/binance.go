package marketdata

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"

	"github.com/mfaber/hindsight/internal/core"
)

// Binance caps a single klines request at 1000 rows.
const klinesRequestCap = 1000

// BinanceClient fetches historical klines from the Binance spot API. It is
// used by the fetch command only; the backtest core never performs I/O.
type BinanceClient struct {
	client  *binance.Client
	limiter *rate.Limiter
}

// NewBinanceClient creates a client. Public kline endpoints work with empty
// credentials.
func NewBinanceClient(apiKey, secretKey string) *BinanceClient {
	return &BinanceClient{
		client:  binance.NewClient(apiKey, secretKey),
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// Klines fetches bars for symbol in [start, end), paginating past the
// exchange's per-request cap. limit <= 0 means no row limit beyond the range.
func (c *BinanceClient) Klines(ctx context.Context, symbol, interval string, start, end time.Time, limit int) ([]core.Bar, error) {
	var bars []core.Bar
	from := start.UnixMilli()
	until := end.UnixMilli()

	for from < until {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		batch := klinesRequestCap
		if limit > 0 && limit-len(bars) < batch {
			batch = limit - len(bars)
		}
		if batch <= 0 {
			break
		}

		klines, err := c.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(from).
			EndTime(until).
			Limit(batch).
			Do(ctx)
		if err != nil {
			return nil, core.WrapError(core.ErrDataFormat, err)
		}
		if len(klines) == 0 {
			break
		}

		for _, k := range klines {
			b, err := klineToBar(k)
			if err != nil {
				return nil, err
			}
			bars = append(bars, b)
		}

		// Next page starts after the last kline's open time.
		from = klines[len(klines)-1].OpenTime + 1
		if len(klines) < batch {
			break
		}
	}
	return bars, nil
}

func klineToBar(k *binance.Kline) (core.Bar, error) {
	var vals [5]float64
	for i, s := range [...]string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return core.Bar{}, core.WrapError(core.ErrDataFormat, err)
		}
		vals[i] = v
	}
	return core.Bar{
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
