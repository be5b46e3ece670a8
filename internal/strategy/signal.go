package strategy

import (
	"fmt"

	"reversal-alert/internal/analysis"
)

// Signal is the directional verdict of an analysis pass
type Signal string

const (
	SignalNone Signal = ""
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
)

func (s Signal) String() string {
	if s == SignalNone {
		return "NONE"
	}
	return string(s)
}

// Params configures indicators and gate thresholds
type Params struct {
	RSIPeriod    int
	MAPeriod     int
	MAType       analysis.MAType
	RSIBuyBelow  float64
	RSISellAbove float64
	BuyBand      float64 // close must be >= MA * BuyBand
	SellBand     float64 // close must be <= MA * SellBand
}

// DefaultParams mirrors config.yaml defaults.
func DefaultParams() Params {
	return Params{
		RSIPeriod:    14,
		MAPeriod:     20,
		MAType:       analysis.EMA,
		RSIBuyBelow:  70,
		RSISellAbove: 60,
		BuyBand:      0.99,
		SellBand:     1.01,
	}
}

// Evaluation is everything computed during one pass
type Evaluation struct {
	Price     float64
	RSI       float64
	MA        float64
	MAType    analysis.MAType // type actually used, may differ from Params on fallback
	MAPeriod  int
	VolumeOK  bool
	Gate      Signal // direction whose gate opened, if any
	Pattern   analysis.Pattern
	Candidate Signal
	Reason    string
}

// Evaluate runs indicator, gate and pattern checks on a validated window.
// The BUY gate is checked first; once a gate opens the pass belongs to that
// direction whether or not a pattern confirms it.
func Evaluate(w analysis.Window, p Params) Evaluation {
	closes := w.Closes()
	rsi := analysis.CalculateRSI(closes, p.RSIPeriod)
	ma, used := analysis.CalculateMA(closes, p.MAPeriod, p.MAType)

	last := len(closes) - 1
	ev := Evaluation{
		Price:    closes[last],
		RSI:      rsi[last],
		MA:       ma[last],
		MAType:   used,
		MAPeriod: p.MAPeriod,
		VolumeOK: w.VolumeConfirmed(),
	}

	switch {
	case ev.RSI < p.RSIBuyBelow && ev.Price >= ev.MA*p.BuyBand && ev.VolumeOK:
		ev.Gate = SignalBuy
		ev.Pattern = analysis.DetectReversal(w.Bars, analysis.Bullish)
	case ev.RSI > p.RSISellAbove && ev.Price <= ev.MA*p.SellBand && ev.VolumeOK:
		ev.Gate = SignalSell
		ev.Pattern = analysis.DetectReversal(w.Bars, analysis.Bearish)
	default:
		ev.Reason = "gates closed"
		if !ev.VolumeOK {
			ev.Reason = "volume below window mean"
		}
		return ev
	}

	if ev.Pattern == analysis.PatternNone {
		ev.Reason = fmt.Sprintf("%s gate open, no reversal pattern", ev.Gate)
		return ev
	}
	ev.Candidate = ev.Gate
	ev.Reason = fmt.Sprintf("%s confirmed by %s", ev.Gate, ev.Pattern)
	return ev
}

// SignalState remembers the last signal handed to the notifier.
type SignalState struct {
	last Signal
}

// Last returns the last emitted signal.
func (s *SignalState) Last() Signal {
	return s.last
}

// Confirm returns candidate if it differs from the last emitted signal and
// records it. Repeats and SignalNone come back as SignalNone.
func (s *SignalState) Confirm(candidate Signal) Signal {
	if candidate == SignalNone || candidate == s.last {
		return SignalNone
	}
	s.last = candidate
	return candidate
}

// SignalEngine pairs the evaluation rules with dedup state
type SignalEngine struct {
	Params Params
	State  *SignalState
}

// NewSignalEngine creates an engine with a fresh state.
func NewSignalEngine(p Params) *SignalEngine {
	return &SignalEngine{Params: p, State: &SignalState{}}
}

// Analyze evaluates the window and returns the signal to emit, if any.
func (e *SignalEngine) Analyze(w analysis.Window) (Evaluation, Signal) {
	ev := Evaluate(w, e.Params)
	emitted := e.State.Confirm(ev.Candidate)
	if ev.Candidate != SignalNone && emitted == SignalNone {
		ev.Reason = fmt.Sprintf("%s suppressed, already emitted", ev.Candidate)
	}
	return ev, emitted
}
