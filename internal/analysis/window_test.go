package analysis

import (
	"errors"
	"math"
	"testing"
)

func rawBars(n int) []RawBar {
	bars := make([]RawBar, n)
	for i := range bars {
		bars[i] = RawBar{Open: "1.0", High: "1.05", Low: "0.95", Close: "1.0", Volume: "100"}
	}
	return bars
}

func TestNewWindowInsufficientData(t *testing.T) {
	for n := 0; n < MinBars; n++ {
		_, err := NewWindow(rawBars(n))
		var insufficient *InsufficientDataError
		if !errors.As(err, &insufficient) {
			t.Fatalf("%d bars: expected InsufficientDataError, got %v", n, err)
		}
		if insufficient.Got != n || insufficient.Need != MinBars {
			t.Fatalf("unexpected error fields: %+v", insufficient)
		}
	}
}

func TestNewWindowMalformed(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(b []RawBar)
		field string
	}{
		{"missing close", func(b []RawBar) { b[1].Close = "" }, "close"},
		{"non numeric open", func(b []RawBar) { b[0].Open = "abc" }, "open"},
		{"zero low", func(b []RawBar) { b[2].Low = "0" }, "low"},
		{"negative high", func(b []RawBar) { b[2].High = "-1.2" }, "high"},
		{"partial volume", func(b []RawBar) { b[1].Volume = "" }, "volume"},
		{"negative volume", func(b []RawBar) { b[0].Volume = "-5" }, "volume"},
		{"overflowing close", func(b []RawBar) { b[1].Close = "1e400" }, "close"},
		{"overflowing volume", func(b []RawBar) { b[2].Volume = "1e400" }, "volume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := rawBars(4)
			tt.edit(bars)
			_, err := NewWindow(bars)
			var malformed *MalformedBarError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedBarError, got %v", err)
			}
			if malformed.Field != tt.field {
				t.Fatalf("expected field %s, got %s", tt.field, malformed.Field)
			}
		})
	}
}

func TestNewWindowWithoutVolume(t *testing.T) {
	bars := rawBars(3)
	for i := range bars {
		bars[i].Volume = ""
	}
	w, err := NewWindow(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.HasVolume {
		t.Fatal("expected window without volume")
	}
	if !w.VolumeConfirmed() {
		t.Fatal("volume filter must pass when volume is absent")
	}
}

func TestNewWindowParsesDecimals(t *testing.T) {
	bars := []RawBar{
		{Datetime: "2024-01-01 10:00:00", Open: "1.08510", High: "1.08600", Low: "1.08400", Close: "1.08550", Volume: "100"},
		{Datetime: "2024-01-01 10:05:00", Open: "1.08550", High: "1.08700", Low: "1.08500", Close: "1.08650", Volume: "150"},
		{Datetime: "2024-01-01 10:10:00", Open: "1.08650", High: "1.08800", Low: "1.08600", Close: "1.08750", Volume: "200"},
	}
	w, err := NewWindow(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Last().Close != 1.0875 || w.Last().Time != "2024-01-01 10:10:00" {
		t.Fatalf("unexpected last bar: %+v", w.Last())
	}
	if w.MeanVolume() != 150 {
		t.Fatalf("expected mean volume 150, got %f", w.MeanVolume())
	}
	if !w.VolumeConfirmed() {
		t.Fatal("expected last volume above mean")
	}
	closes := w.Closes()
	if len(closes) != 3 || closes[0] != 1.0855 {
		t.Fatalf("unexpected closes: %v", closes)
	}
}

func TestNewWindowFromCandles(t *testing.T) {
	_, err := NewWindowFromCandles([]Candle{{Open: 1, High: 1, Low: 1, Close: 1}}, false)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}

	candles := []Candle{
		{Open: 1, High: 1, Low: 1, Close: 1},
		{Open: 1, High: 1, Low: 0, Close: 1},
		{Open: 1, High: 1, Low: 1, Close: 1},
	}
	_, err = NewWindowFromCandles(candles, false)
	var malformed *MalformedBarError
	if !errors.As(err, &malformed) || malformed.Index != 1 || malformed.Field != "low" {
		t.Fatalf("expected malformed low on bar 1, got %v", err)
	}

	candles[1].Low = 1
	candles[2].High = math.Inf(1)
	_, err = NewWindowFromCandles(candles, false)
	if !errors.As(err, &malformed) || malformed.Index != 2 || malformed.Field != "high" {
		t.Fatalf("expected malformed high on bar 2, got %v", err)
	}

	candles[2].High = 1
	candles[0].Volume = math.NaN()
	if _, err = NewWindowFromCandles(candles, true); !errors.As(err, &malformed) || malformed.Field != "volume" {
		t.Fatalf("expected malformed volume, got %v", err)
	}
}
