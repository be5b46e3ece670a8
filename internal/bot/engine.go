package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reversal-alert/internal/analysis"
	"reversal-alert/internal/config"
	"reversal-alert/internal/exchange"
	"reversal-alert/internal/journal"
	"reversal-alert/internal/notification"
	"reversal-alert/internal/strategy"
	"reversal-alert/internal/ui"
)

// ConfigSource supplies the active configuration and reloads it on request
type ConfigSource interface {
	Current() *config.AppConfig
	Refresh() (bool, error)
}

// BotEngine orchestrates the scheduled analysis passes
type BotEngine struct {
	Config    ConfigSource
	Source    exchange.BarSource
	Signals   *strategy.SignalEngine
	State     *strategy.StateManager
	Notifier  notification.Notifier
	Journal   *journal.Journal
	UI        *ui.ConsoleUI
	PassCount int

	newSource func(*config.AppConfig) exchange.BarSource
	now       func() time.Time
}

// NewBotEngine initializes all dependencies from the active configuration
func NewBotEngine(src ConfigSource, j *journal.Journal) *BotEngine {
	cfg := src.Current()

	console := ui.NewConsoleUI(cfg.System.LogLevel)
	state := strategy.NewStateManager(cfg.Instrument.Symbol)
	notifier := notification.NewTelegramNotifier(notification.TelegramConfig{
		BaseURL:        cfg.Notification.Telegram.BaseURL,
		BotToken:       cfg.Telegram.BotToken,
		ChatID:         cfg.Telegram.ChatID,
		Enabled:        cfg.Notification.Telegram.Enabled,
		MaxAttempts:    cfg.Notification.Telegram.MaxAttempts,
		RetryBaseDelay: time.Duration(cfg.Notification.Telegram.RetryBaseDelay) * time.Millisecond,
	})
	if !notifier.IsEnabled() {
		console.LogWarning("Telegram notifier disabled (missing token/chat id or turned off)")
	}

	b := &BotEngine{
		Config:    src,
		Signals:   strategy.NewSignalEngine(cfg.StrategyParams()),
		State:     state,
		Notifier:  notifier,
		Journal:   j,
		UI:        console,
		newSource: NewBarSource,
		now:       time.Now,
	}
	b.Source = b.newSource(cfg)
	b.wireRateLimitLog()
	return b
}

// NewBarSource builds the market-data client selected by market_data.provider
func NewBarSource(cfg *config.AppConfig) exchange.BarSource {
	switch cfg.MarketData.Provider {
	case "binance":
		c := exchange.NewBinanceClient(cfg.Binance.APIKey, cfg.Binance.APISecret, cfg.Binance.UseTestnet, cfg.FetchTimeout())
		if cfg.MarketData.BaseURL != "" {
			c.WithBaseURL(cfg.MarketData.BaseURL)
		}
		return c
	default:
		return exchange.NewTwelveDataClient(exchange.TwelveDataOptions{
			BaseURL:           cfg.MarketData.BaseURL,
			APIKey:            cfg.TwelveData.APIKey,
			Timeout:           cfg.FetchTimeout(),
			RateLimitFloor:    cfg.MarketData.RateLimitFloor,
			RateLimitCooldown: time.Duration(cfg.MarketData.RateLimitCooldown) * time.Second,
		})
	}
}

func (b *BotEngine) wireRateLimitLog() {
	if td, ok := b.Source.(*exchange.TwelveDataClient); ok {
		td.OnRateLimit = func(remaining int, cooldown time.Duration) {
			b.UI.LogWarning(fmt.Sprintf("API quota low: %d requests left, cooling down %s", remaining, cooldown))
		}
	}
}

// Run starts the scheduling loop and returns when ctx is cancelled
func (b *BotEngine) Run(ctx context.Context) {
	cfg := b.Config.Current()
	b.UI.PrintBanner(cfg.Instrument.Symbol, cfg.Instrument.Interval, b.Source.Name(), cfg.Schedule.IntervalMinutes)

	if cfg.Notification.Telegram.NotifyStartup {
		msg := fmt.Sprintf("Bot started: %s %s", cfg.Instrument.Symbol, cfg.Instrument.Interval)
		if err := b.Notifier.Send(ctx, msg); err != nil {
			b.UI.LogError(fmt.Sprintf("Startup notification failed: %v", err))
		}
	}

	// Initial pass
	b.Tick(ctx)

	for {
		wait := nextBoundary(b.now(), b.Config.Current().Interval())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			b.UI.LogInfo("Shutting down")
			return
		case <-timer.C:
			b.Tick(ctx)
		}
	}
}

// nextBoundary is the time until the next wall-clock multiple of interval
func nextBoundary(now time.Time, interval time.Duration) time.Duration {
	if interval <= 0 {
		interval = time.Minute
	}
	next := now.Truncate(interval).Add(interval)
	return next.Sub(now)
}

// Tick executes one analysis pass. Errors end the pass only; they are
// logged, journaled and returned for the caller's information.
func (b *BotEngine) Tick(ctx context.Context) (strategy.Signal, error) {
	changed, err := b.Config.Refresh()
	if err != nil {
		b.fail(strategy.PassRecord{ID: journal.NewPassID(), At: b.now()}, fmt.Errorf("config refresh: %w", err))
		return strategy.SignalNone, err
	}
	cfg := b.Config.Current()
	if changed {
		b.applyConfig(cfg)
	}

	if !cfg.InWorkingHours(b.now()) {
		b.UI.LogDebug("Outside working hours, pass skipped")
		return strategy.SignalNone, nil
	}

	b.PassCount++
	b.UI.PrintPassHeader(b.PassCount, cfg.Instrument.Symbol)
	rec := strategy.PassRecord{ID: journal.NewPassID(), At: b.now()}

	raw, err := b.Source.FetchBars(ctx, cfg.Instrument.Symbol, cfg.Instrument.Interval, cfg.Instrument.Lookback)
	if err != nil {
		b.fail(rec, fmt.Errorf("fetch bars from %s: %w", b.Source.Name(), err))
		return strategy.SignalNone, err
	}
	rec.Bars = len(raw)

	window, err := analysis.NewWindow(raw)
	if err != nil {
		b.fail(rec, err)
		return strategy.SignalNone, err
	}

	ev, sig := b.Signals.Analyze(window)
	if ev.MAType != b.Signals.Params.MAType {
		b.UI.LogWarning(fmt.Sprintf("Unknown MA type %q, using %s", b.Signals.Params.MAType, ev.MAType))
	}
	b.UI.LogIndicators(ev.RSI, ev.MA, string(ev.MAType), ev.MAPeriod, ev.VolumeOK)

	rec.Price = ev.Price
	rec.RSI = ev.RSI
	rec.MA = ev.MA
	rec.Pattern = string(ev.Pattern)
	rec.Candidate = ev.Candidate.String()
	rec.Emitted = sig.String()
	b.record(cfg.Instrument.Symbol, rec)

	if sig == strategy.SignalNone {
		b.UI.LogInfo(fmt.Sprintf("No signal (%s)", ev.Reason))
		return sig, nil
	}

	b.UI.LogSignal(cfg.Instrument.Symbol, string(sig), string(ev.Pattern), ev.Price)
	msg := notification.FormatSignal(notification.SignalAlert{
		Side:     string(sig),
		Symbol:   cfg.Instrument.Symbol,
		Price:    ev.Price,
		Pattern:  string(ev.Pattern),
		RSI:      ev.RSI,
		MA:       ev.MA,
		MAType:   string(ev.MAType),
		MAPeriod: ev.MAPeriod,
		BarTime:  window.Last().Time,
	})
	if err := b.Notifier.Send(ctx, msg); err != nil {
		b.UI.LogError(fmt.Sprintf("Failed to deliver %s alert: %v", sig, err))
	}
	return sig, nil
}

func (b *BotEngine) applyConfig(cfg *config.AppConfig) {
	b.Signals.Params = cfg.StrategyParams()
	b.UI.SetLevel(cfg.System.LogLevel)
	b.State.SetSymbol(cfg.Instrument.Symbol)
	if b.newSource != nil {
		b.Source = b.newSource(cfg)
		b.wireRateLimitLog()
	}
	b.UI.LogInfo("Configuration reloaded")
}

func (b *BotEngine) fail(rec strategy.PassRecord, err error) {
	var insufficient *analysis.InsufficientDataError
	var malformed *analysis.MalformedBarError
	var cfgErr *config.ConfigurationError
	switch {
	case errors.As(err, &insufficient):
		b.UI.LogWarning(fmt.Sprintf("Pass skipped: %v", err))
	case errors.As(err, &malformed):
		b.UI.LogError(fmt.Sprintf("Pass skipped, bad bar data: %v", err))
	case errors.As(err, &cfgErr):
		b.UI.LogError(fmt.Sprintf("Pass skipped, configuration rejected: %v", err))
	default:
		b.UI.LogError(fmt.Sprintf("Pass failed: %v", err))
	}

	rec.Candidate = strategy.SignalNone.String()
	rec.Emitted = strategy.SignalNone.String()
	rec.Error = err.Error()
	b.record(b.Config.Current().Instrument.Symbol, rec)
}

func (b *BotEngine) record(symbol string, rec strategy.PassRecord) {
	b.State.RecordPass(rec, b.Signals.State.Last())
	if b.Journal != nil {
		b.Journal.Record(symbol, rec)
	}
}
