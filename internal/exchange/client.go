package exchange

import (
	"context"
	"fmt"
	"time"

	"reversal-alert/internal/analysis"
)

// BarSource defines the market-data calls the bot needs from a provider
type BarSource interface {
	// Name identifies the provider in logs
	Name() string

	// FetchBars returns up to limit bars, oldest first
	FetchBars(ctx context.Context, symbol, interval string, limit int) ([]analysis.RawBar, error)
}

// ProviderError is a provider-side rejection (bad symbol, exhausted key, ...)
type ProviderError struct {
	Provider string
	Code     int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error %d: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// sleepCtx waits d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
