package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MinBars is the shortest window the analysis accepts: two bars of
// engulfing look-back plus the current bar.
const MinBars = 3

// Candle represents a single price bar
type Candle struct {
	Time   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// RawBar is a bar as delivered by a market-data provider. Numeric fields
// are decimal strings; an empty Volume means the provider has none.
type RawBar struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume,omitempty"`
}

// InsufficientDataError is returned when a series is too short to analyse.
type InsufficientDataError struct {
	Got  int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: got %d bars, need at least %d", e.Got, e.Need)
}

// MalformedBarError is returned when a bar field is missing or not a usable number.
type MalformedBarError struct {
	Index int
	Field string
	Value string
}

func (e *MalformedBarError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("malformed bar %d: %s is missing", e.Index, e.Field)
	}
	return fmt.Sprintf("malformed bar %d: %s=%q is not a valid number", e.Index, e.Field, e.Value)
}

// Window is a validated, oldest-first series of bars.
type Window struct {
	Bars      []Candle
	HasVolume bool
}

// NewWindow validates raw provider bars and converts them to candles.
func NewWindow(raw []RawBar) (Window, error) {
	if len(raw) < MinBars {
		return Window{}, &InsufficientDataError{Got: len(raw), Need: MinBars}
	}

	withVolume := 0
	for _, r := range raw {
		if strings.TrimSpace(r.Volume) != "" {
			withVolume++
		}
	}
	hasVolume := withVolume == len(raw)
	if withVolume > 0 && !hasVolume {
		for i, r := range raw {
			if strings.TrimSpace(r.Volume) == "" {
				return Window{}, &MalformedBarError{Index: i, Field: "volume"}
			}
		}
	}

	bars := make([]Candle, len(raw))
	for i, r := range raw {
		var err error
		c := Candle{Time: r.Datetime}
		if c.Open, err = parseNumber(i, "open", r.Open); err != nil {
			return Window{}, err
		}
		if c.High, err = parseNumber(i, "high", r.High); err != nil {
			return Window{}, err
		}
		if c.Low, err = parseNumber(i, "low", r.Low); err != nil {
			return Window{}, err
		}
		if c.Close, err = parseNumber(i, "close", r.Close); err != nil {
			return Window{}, err
		}
		if hasVolume {
			if c.Volume, err = parseNumber(i, "volume", r.Volume); err != nil {
				return Window{}, err
			}
		}
		bars[i] = c
	}

	return NewWindowFromCandles(bars, hasVolume)
}

// NewWindowFromCandles validates candles that are already numeric. Prices
// must be finite and positive, volume finite and non-negative.
func NewWindowFromCandles(candles []Candle, hasVolume bool) (Window, error) {
	if len(candles) < MinBars {
		return Window{}, &InsufficientDataError{Got: len(candles), Need: MinBars}
	}
	for i, c := range candles {
		for _, f := range []struct {
			name string
			v    float64
		}{{"open", c.Open}, {"high", c.High}, {"low", c.Low}, {"close", c.Close}} {
			if math.IsInf(f.v, 0) || !(f.v > 0) {
				return Window{}, &MalformedBarError{Index: i, Field: f.name, Value: fmt.Sprint(f.v)}
			}
		}
		if hasVolume && (math.IsInf(c.Volume, 0) || !(c.Volume >= 0)) {
			return Window{}, &MalformedBarError{Index: i, Field: "volume", Value: fmt.Sprint(c.Volume)}
		}
	}
	bars := make([]Candle, len(candles))
	copy(bars, candles)
	return Window{Bars: bars, HasVolume: hasVolume}, nil
}

// parseNumber coerces a decimal string. Range checks happen in
// NewWindowFromCandles.
func parseNumber(index int, field, value string) (float64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, &MalformedBarError{Index: index, Field: field}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &MalformedBarError{Index: index, Field: field, Value: value}
	}
	return d.InexactFloat64(), nil
}

// Closes returns the close prices, oldest first.
func (w Window) Closes() []float64 {
	closes := make([]float64, len(w.Bars))
	for i, b := range w.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the current (most recent) bar.
func (w Window) Last() Candle {
	return w.Bars[len(w.Bars)-1]
}

// MeanVolume is the average volume over the whole window.
func (w Window) MeanVolume() float64 {
	if len(w.Bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range w.Bars {
		sum += b.Volume
	}
	return sum / float64(len(w.Bars))
}

// VolumeConfirmed reports whether the current bar trades above the window
// mean. Windows without volume always pass.
func (w Window) VolumeConfirmed() bool {
	if !w.HasVolume {
		return true
	}
	return w.Last().Volume > w.MeanVolume()
}
