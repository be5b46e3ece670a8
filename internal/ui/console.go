package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	// Colors using fatih/color for cross-platform support (handles Windows mostly)
	Green   = color.New(color.FgGreen).SprintfFunc()
	Red     = color.New(color.FgRed).SprintfFunc()
	Yellow  = color.New(color.FgYellow).SprintfFunc()
	Cyan    = color.New(color.FgCyan).SprintfFunc()
	White   = color.New(color.FgWhite).SprintfFunc()
	Magenta = color.New(color.FgMagenta).SprintfFunc()

	BoldGreen = color.New(color.FgGreen, color.Bold).SprintfFunc()
	BoldRed   = color.New(color.FgRed, color.Bold).SprintfFunc()
	BoldCyan  = color.New(color.FgCyan, color.Bold).SprintfFunc()
)

// Level orders console verbosity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps config strings to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ConsoleUI handles all user visible output
type ConsoleUI struct {
	out   io.Writer
	level Level
	now   func() time.Time
}

func NewConsoleUI(level string) *ConsoleUI {
	return &ConsoleUI{out: os.Stdout, level: ParseLevel(level), now: time.Now}
}

// NewConsoleUIWriter writes to w instead of stdout
func NewConsoleUIWriter(w io.Writer, level string) *ConsoleUI {
	return &ConsoleUI{out: w, level: ParseLevel(level), now: time.Now}
}

// SetLevel follows a config refresh
func (ui *ConsoleUI) SetLevel(level string) {
	ui.level = ParseLevel(level)
}

// PrintBanner displays the startup banner
func (ui *ConsoleUI) PrintBanner(symbol, interval, provider string, everyMinutes int) {
	fmt.Fprintln(ui.out, Cyan("╔══════════════════════════════════════════════════════════════╗"))
	fmt.Fprintf(ui.out, "%s  %s\n", Cyan("║"), Yellow("📡 REVERSAL ALERT"))
	fmt.Fprintf(ui.out, "%s  Strat: RSI + MA gate + Engulfing/Hammer/Star\n", Cyan("║"))
	fmt.Fprintf(ui.out, "%s  Instrument: %s (%s) via %s\n", Cyan("║"), BoldCyan(symbol), interval, provider)
	fmt.Fprintf(ui.out, "%s  Every: %d min\n", Cyan("║"), everyMinutes)
	fmt.Fprintln(ui.out, Cyan("╚══════════════════════════════════════════════════════════════╝"))
	fmt.Fprintln(ui.out)
}

// PrintPassHeader prints the separator for each analysis pass
func (ui *ConsoleUI) PrintPassHeader(passNum int, symbol string) {
	if ui.level > LevelInfo {
		return
	}
	timestamp := ui.now().Format("15:04:05")
	fmt.Fprintln(ui.out, Cyan("------------------------------------------------------------"))
	fmt.Fprintf(ui.out, "📊 Pass #%d | %s | %s\n", passNum, timestamp, symbol)
}

// LogDebug prints a debug message
func (ui *ConsoleUI) LogDebug(msg string) {
	ui.log(LevelDebug, Magenta("DEBUG"), msg)
}

// LogInfo prints a standard info message
func (ui *ConsoleUI) LogInfo(msg string) {
	ui.log(LevelInfo, Green("INFO "), msg)
}

// LogWarning prints a warning message
func (ui *ConsoleUI) LogWarning(msg string) {
	ui.log(LevelWarn, Yellow("WARN "), msg)
}

// LogError prints an error message
func (ui *ConsoleUI) LogError(msg string) {
	ui.log(LevelError, Red("ERROR"), msg)
}

func (ui *ConsoleUI) log(level Level, tag, msg string) {
	if level < ui.level {
		return
	}
	ts := ui.now().Format("15:04:05")
	fmt.Fprintf(ui.out, "%s | %s | %s\n", ts, tag, msg)
}

// LogSignal prints an emitted signal
func (ui *ConsoleUI) LogSignal(symbol, side, pattern string, price float64) {
	ts := ui.now().Format("15:04:05")
	icon := "🟢"
	colorFunc := BoldGreen

	if side == "SELL" {
		icon = "🔴"
		colorFunc = BoldRed
	}

	fmt.Fprintf(ui.out, "%s | %s %s SIGNAL: %s | %s | Price: %.5f\n",
		ts, icon, colorFunc(side), colorFunc(symbol), pattern, price)
}

// LogIndicators prints the indicator line of a pass
func (ui *ConsoleUI) LogIndicators(rsi, ma float64, maType string, maPeriod int, volumeOK bool) {
	vol := Green("vol ok")
	if !volumeOK {
		vol = Yellow("vol low")
	}
	ui.LogInfo(fmt.Sprintf("RSI %.2f | %s(%d) %.5f | %s", rsi, maType, maPeriod, ma, vol))
}
