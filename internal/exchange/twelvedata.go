package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"reversal-alert/internal/analysis"
)

const DefaultTwelveDataURL = "https://api.twelvedata.com"

// TwelveDataClient implements BarSource over the Twelve Data time_series endpoint
type TwelveDataClient struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	timeout  time.Duration
	floor    int
	cooldown time.Duration

	// OnRateLimit is called before the cooldown sleep, if set
	OnRateLimit func(remaining int, cooldown time.Duration)
}

// TwelveDataOptions configures NewTwelveDataClient
type TwelveDataOptions struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RateLimitFloor    int
	RateLimitCooldown time.Duration
}

type timeSeriesResponse struct {
	Values  []analysis.RawBar `json:"values"`
	Status  string            `json:"status"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
}

// NewTwelveDataClient creates a new client instance
func NewTwelveDataClient(opts TwelveDataOptions) *TwelveDataClient {
	base := opts.BaseURL
	if base == "" {
		base = DefaultTwelveDataURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TwelveDataClient{
		baseURL:  base,
		apiKey:   opts.APIKey,
		client:   &http.Client{},
		timeout:  timeout,
		floor:    opts.RateLimitFloor,
		cooldown: opts.RateLimitCooldown,
	}
}

func (c *TwelveDataClient) Name() string {
	return "twelvedata"
}

// FetchBars requests the latest limit bars. Twelve Data answers newest
// first; the result is reversed to oldest first. When the remaining request
// quota drops below the floor the call sleeps for the cooldown before
// returning.
func (c *TwelveDataClient) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]analysis.RawBar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(limit))
	q.Set("apikey", c.apiKey)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/time_series?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build twelvedata request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twelvedata request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read twelvedata response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: c.Name(), Code: resp.StatusCode, Message: string(body)}
	}

	var parsed timeSeriesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode twelvedata response: %w", err)
	}
	if parsed.Values == nil {
		msg := parsed.Message
		if msg == "" {
			msg = "response has no values"
		}
		return nil, &ProviderError{Provider: c.Name(), Code: parsed.Code, Message: msg}
	}

	bars := make([]analysis.RawBar, len(parsed.Values))
	for i, v := range parsed.Values {
		bars[len(bars)-1-i] = v
	}

	if remaining, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining")); err == nil && remaining < c.floor {
		if c.OnRateLimit != nil {
			c.OnRateLimit(remaining, c.cooldown)
		}
		if err := sleepCtx(ctx, c.cooldown); err != nil {
			return nil, err
		}
	}

	return bars, nil
}
