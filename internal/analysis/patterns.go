package analysis

import (
	"math"
)

// Pattern names a candlestick reversal
type Pattern string

const (
	PatternNone             Pattern = ""
	PatternBullishEngulfing Pattern = "Bullish Engulfing"
	PatternBearishEngulfing Pattern = "Bearish Engulfing"
	PatternHammer           Pattern = "Hammer"
	PatternShootingStar     Pattern = "Shooting Star"
)

// Direction is the side a reversal points to.
type Direction int

const (
	Bullish Direction = iota + 1
	Bearish
)

// WickBodyRatio is how many bodies long the dominant wick of a hammer or
// shooting star must be.
const WickBodyRatio = 2.0

// IsBullishEngulfing: a red candle followed by a green one whose body covers it.
func IsBullishEngulfing(o1, c1, o2, c2 float64) bool {
	prevRed := c1 < o1
	currGreen := c2 > o2
	return prevRed && currGreen && o2 <= c1 && c2 >= o1
}

// IsBearishEngulfing: a green candle followed by a red one whose body covers it.
func IsBearishEngulfing(o1, c1, o2, c2 float64) bool {
	prevGreen := c1 > o1
	currRed := c2 < o2
	return prevGreen && currRed && o2 >= c1 && c2 <= o1
}

// IsHammer checks for a long lower wick under a small body. Dojis never qualify.
func IsHammer(o, c, h, l float64) bool {
	body := math.Abs(c - o)
	if body <= 0 {
		return false
	}
	lowerWick := math.Min(o, c) - l
	upperWick := h - math.Max(o, c)
	return lowerWick >= body*WickBodyRatio && upperWick < body
}

// IsShootingStar is the mirror of IsHammer: long upper wick, short lower wick.
func IsShootingStar(o, c, h, l float64) bool {
	body := math.Abs(c - o)
	if body <= 0 {
		return false
	}
	upperWick := h - math.Max(o, c)
	lowerWick := math.Min(o, c) - l
	return upperWick >= body*WickBodyRatio && lowerWick < body
}

// DetectReversal returns the first reversal pattern confirming dir.
// Engulfing looks at the two bars before the current one and wins over the
// single-bar pattern on the current bar.
func DetectReversal(candles []Candle, dir Direction) Pattern {
	if len(candles) < MinBars {
		return PatternNone
	}

	first := candles[len(candles)-3]
	second := candles[len(candles)-2]
	last := candles[len(candles)-1]

	switch dir {
	case Bullish:
		if IsBullishEngulfing(first.Open, first.Close, second.Open, second.Close) {
			return PatternBullishEngulfing
		}
		if IsHammer(last.Open, last.Close, last.High, last.Low) {
			return PatternHammer
		}
	case Bearish:
		if IsBearishEngulfing(first.Open, first.Close, second.Open, second.Close) {
			return PatternBearishEngulfing
		}
		if IsShootingStar(last.Open, last.Close, last.High, last.Low) {
			return PatternShootingStar
		}
	}
	return PatternNone
}
