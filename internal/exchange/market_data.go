package exchange

import (
	"context"
	"fmt"
	"time"

	"reversal-alert/internal/analysis"
)

// FetchBars returns candlestick data, oldest first as Binance delivers it
func (b *BinanceClient) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]analysis.RawBar, error) {
	binanceInterval, ok := BinanceInterval(interval)
	if !ok {
		return nil, &ProviderError{Provider: b.Name(), Message: fmt.Sprintf("unsupported interval %q", interval)}
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(binanceInterval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s %s: %w", symbol, interval, err)
	}

	result := make([]analysis.RawBar, 0, len(klines))
	for _, k := range klines {
		result = append(result, analysis.RawBar{
			Datetime: time.UnixMilli(k.OpenTime).UTC().Format("2006-01-02 15:04:05"),
			Open:     k.Open,
			High:     k.High,
			Low:      k.Low,
			Close:    k.Close,
			Volume:   k.Volume,
		})
	}
	return result, nil
}

// twelveDataIntervals maps Twelve Data interval names to Binance ones so a
// config can switch provider without touching instrument.interval.
var twelveDataIntervals = map[string]string{
	"1min":   "1m",
	"5min":   "5m",
	"15min":  "15m",
	"30min":  "30m",
	"1day":   "1d",
	"1week":  "1w",
	"1month": "1M",
}

var binanceIntervals = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

// BinanceInterval returns the kline interval Binance expects for interval,
// accepting both Binance and Twelve Data spellings.
func BinanceInterval(interval string) (string, bool) {
	if binanceIntervals[interval] {
		return interval, true
	}
	mapped, ok := twelveDataIntervals[interval]
	return mapped, ok
}
