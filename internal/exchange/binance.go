package exchange

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
)

// BinanceClient implements BarSource for Binance Futures klines
type BinanceClient struct {
	client  *futures.Client
	timeout time.Duration
}

// NewBinanceClient creates a new client instance. Klines are public, so the
// keys may be empty.
func NewBinanceClient(apiKey, apiSecret string, useTestnet bool, timeout time.Duration) *BinanceClient {
	futures.UseTestnet = useTestnet
	client := binance.NewFuturesClient(apiKey, apiSecret)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BinanceClient{client: client, timeout: timeout}
}

// WithBaseURL points the client at another endpoint (tests, mirrors)
func (b *BinanceClient) WithBaseURL(url string) *BinanceClient {
	b.client.BaseURL = url
	return b
}

func (b *BinanceClient) Name() string {
	return "binance"
}

// GetServerTime returns exchange server time
func (b *BinanceClient) GetServerTime(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.client.NewServerTimeService().Do(ctx)
}
