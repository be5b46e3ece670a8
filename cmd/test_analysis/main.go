package main

import (
	"fmt"

	"reversal-alert/internal/analysis"
	"reversal-alert/internal/strategy"
)

func main() {
	fmt.Println("🧪 Testing Analysis Package...")

	// 1. RSI on a rising/falling series
	prices := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00,
	}
	rsi := analysis.CalculateRSI(prices, 14)
	fmt.Printf("📊 RSI: %.2f\n", rsi[len(rsi)-1])

	ema, _ := analysis.CalculateMA(prices, 20, analysis.EMA)
	sma, _ := analysis.CalculateMA(prices, 20, analysis.SMA)
	fmt.Printf("📈 EMA(20): %.4f  SMA(20): %.4f\n", ema[len(ema)-1], sma[len(sma)-1])

	// 2. Patterns
	hammer := analysis.IsHammer(1.00, 1.005, 1.008, 0.90)
	star := analysis.IsShootingStar(1.00, 0.995, 1.10, 0.995)
	fmt.Printf("🔨 Hammer: %v  ⭐ Shooting Star: %v\n", hammer, star)

	// 3. Full pass on the sample reversal window
	window, err := analysis.NewWindow([]analysis.RawBar{
		{Datetime: "2024-01-02 10:00:00", Open: "1.0", High: "1.0", Low: "0.85", Close: "0.9", Volume: "100"},
		{Datetime: "2024-01-02 10:05:00", Open: "0.9", High: "1.15", Low: "0.88", Close: "1.1", Volume: "150"},
		{Datetime: "2024-01-02 10:10:00", Open: "0.89", High: "1.05", Low: "0.97", Close: "1.0", Volume: "200"},
	})
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}

	engine := strategy.NewSignalEngine(strategy.DefaultParams())
	for i := 1; i <= 2; i++ {
		ev, sig := engine.Analyze(window)
		fmt.Printf("🦅 Pass %d: RSI %.2f %s %.4f pattern=%q candidate=%s emitted=%s\n",
			i, ev.RSI, ev.MAType, ev.MA, ev.Pattern, ev.Candidate, sig)
	}
}
