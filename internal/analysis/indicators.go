package analysis

import "strings"

// MAType selects the moving average flavour.
type MAType string

const (
	SMA MAType = "SMA"
	EMA MAType = "EMA"
)

// rsiEpsilon keeps the RS ratio finite when there are no losses.
const rsiEpsilon = 1e-10

// ParseMAType normalises a configured MA type. ok is false for unknown values.
func ParseMAType(s string) (MAType, bool) {
	switch MAType(strings.ToUpper(strings.TrimSpace(s))) {
	case SMA:
		return SMA, true
	case EMA:
		return EMA, true
	}
	return SMA, false
}

// CalculateRSI calculates the Relative Strength Index for every bar.
// Average gain and loss are rolling means over the last period deltas; the
// first period-1 values use the deltas available so far. The first bar has
// no predecessor and counts as a zero delta.
func CalculateRSI(prices []float64, period int) []float64 {
	if len(prices) == 0 {
		return nil
	}
	if period < 1 {
		period = 1
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	avgGains := rollingMean(gains, period)
	avgLosses := rollingMean(losses, period)

	rsi := make([]float64, len(prices))
	for i := range prices {
		// rolling subtraction can leave -1e-17 style residue
		gain := max(avgGains[i], 0)
		loss := max(avgLosses[i], 0)
		rs := gain / (loss + rsiEpsilon)
		rsi[i] = 100 - (100 / (1 + rs))
	}
	return rsi
}

// CalculateMA returns the moving average of prices and the type actually
// used. Unknown types fall back to SMA.
func CalculateMA(prices []float64, period int, maType MAType) ([]float64, MAType) {
	if period < 1 {
		period = 1
	}
	switch maType {
	case EMA:
		return CalculateEMA(prices, period), EMA
	case SMA:
		return CalculateSMA(prices, period), SMA
	default:
		return CalculateSMA(prices, period), SMA
	}
}

// CalculateSMA is a rolling mean with partial windows at the start.
func CalculateSMA(prices []float64, period int) []float64 {
	return rollingMean(prices, period)
}

// CalculateEMA calculates Exponential Moving Average seeded with the first
// price, without bias adjustment.
func CalculateEMA(prices []float64, period int) []float64 {
	if len(prices) == 0 {
		return nil
	}

	ema := make([]float64, len(prices))
	multiplier := 2.0 / float64(period+1)

	ema[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		ema[i] = (prices[i]-ema[i-1])*multiplier + ema[i-1]
	}

	return ema
}

func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		n := i + 1
		if n > window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}
