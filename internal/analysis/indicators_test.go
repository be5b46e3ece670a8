package analysis

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCalculateRSIBounds(t *testing.T) {
	prices := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00,
	}
	rsi := CalculateRSI(prices, 14)
	if len(rsi) != len(prices) {
		t.Fatalf("expected %d values, got %d", len(prices), len(rsi))
	}
	for i, v := range rsi {
		if v < 0 || v > 100 || math.IsNaN(v) {
			t.Fatalf("rsi[%d]=%f out of range", i, v)
		}
	}
}

func TestCalculateRSIThreeBars(t *testing.T) {
	rsi := CalculateRSI([]float64{0.9, 1.1, 1.0}, 14)
	// avg gain 0.2/3, avg loss 0.1/3 -> RS 2
	if !almostEqual(rsi[2], 100.0*2/3, 1e-6) {
		t.Fatalf("expected ~66.67, got %f", rsi[2])
	}
}

func TestCalculateRSINoLosses(t *testing.T) {
	rsi := CalculateRSI([]float64{1, 2, 3, 4, 5, 6}, 3)
	if !almostEqual(rsi[5], 100, 1e-6) {
		t.Fatalf("expected RSI close to 100 without losses, got %f", rsi[5])
	}
}

func TestCalculateRSIFlat(t *testing.T) {
	rsi := CalculateRSI([]float64{1, 1, 1}, 14)
	for i, v := range rsi {
		if v != 0 {
			t.Fatalf("expected flat RSI 0 at %d, got %f", i, v)
		}
	}
}

func TestCalculateRSIIsCausal(t *testing.T) {
	base := []float64{10, 11, 10.5, 12, 11.7, 12.2}
	extended := append(append([]float64{}, base...), 5, 50)
	a := CalculateRSI(base, 4)
	b := CalculateRSI(extended, 4)
	for i := range a {
		if !almostEqual(a[i], b[i], 1e-9) {
			t.Fatalf("rsi[%d] changed after appending bars: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestCalculateSMAPartialWindows(t *testing.T) {
	got := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	want := []float64{1, 1.5, 2, 3, 4}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Fatalf("sma[%d]: want %f, got %f", i, want[i], got[i])
		}
	}
}

func TestCalculateEMA(t *testing.T) {
	got := CalculateEMA([]float64{1, 2, 3}, 3)
	// alpha = 0.5
	want := []float64{1, 1.5, 2.25}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Fatalf("ema[%d]: want %f, got %f", i, want[i], got[i])
		}
	}
}

func TestCalculateMAUnknownTypeFallsBackToSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4}
	got, used := CalculateMA(prices, 2, MAType("WMA"))
	if used != SMA {
		t.Fatalf("expected SMA fallback, got %s", used)
	}
	if !almostEqual(got[3], 3.5, 1e-12) {
		t.Fatalf("expected 3.5, got %f", got[3])
	}
}

func TestParseMAType(t *testing.T) {
	tests := []struct {
		in   string
		want MAType
		ok   bool
	}{
		{"ema", EMA, true},
		{" SMA ", SMA, true},
		{"hull", SMA, false},
	}
	for _, tt := range tests {
		got, ok := ParseMAType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMAType(%q) = %s,%v want %s,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
