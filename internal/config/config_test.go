package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reversal-alert/internal/analysis"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("instrument:\n  symbol: GBP/USD\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Instrument.Symbol != "GBP/USD" {
		t.Fatalf("expected symbol from yaml, got %s", cfg.Instrument.Symbol)
	}
	if cfg.Instrument.Interval != "5min" || cfg.Indicators.RSIPeriod != 14 || cfg.Signal.BuyBand != 0.99 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Notification.Telegram.MaxAttempts != 3 {
		t.Fatalf("expected 3 telegram attempts, got %d", cfg.Notification.Telegram.MaxAttempts)
	}
}

func TestParseReadsSecretsFromEnv(t *testing.T) {
	t.Setenv("TWELVE_DATA_API_KEY", "td-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("USE_TESTNET", "true")
	t.Setenv("SYMBOL", "USD/JPY")

	cfg, err := Parse([]byte("instrument:\n  symbol: GBP/USD\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.TwelveData.APIKey != "td-key" || cfg.Telegram.BotToken != "bot-token" || cfg.Telegram.ChatID != "42" {
		t.Fatalf("secrets not loaded: %+v", cfg)
	}
	if !cfg.Binance.UseTestnet {
		t.Fatal("expected testnet from env")
	}
	if cfg.Instrument.Symbol != "USD/JPY" {
		t.Fatalf("expected env symbol override, got %s", cfg.Instrument.Symbol)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"rsi period", "indicators:\n  rsi_period: 0\n", "indicators.rsi_period"},
		{"buy threshold", "signal:\n  rsi_buy_below: 120\n", "signal.rsi_buy_below"},
		{"provider", "market_data:\n  provider: bloomberg\n", "market_data.provider"},
		{"lookback", "instrument:\n  lookback: 2\n", "instrument.lookback"},
		{"timezone", "schedule:\n  working_hours:\n    timezone: Mars/Olympus\n", "schedule.working_hours.timezone"},
		{"hours", "schedule:\n  working_hours:\n    start: \"23:00\"\n", "schedule.working_hours"},
		{"binance interval", "instrument:\n  interval: 45min\nmarket_data:\n  provider: binance\n", "instrument.interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Fatalf("expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestValidateAcceptsBinanceIntervals(t *testing.T) {
	for _, interval := range []string{"5min", "1h", "1day", "15m"} {
		yaml := "instrument:\n  interval: " + interval + "\nmarket_data:\n  provider: binance\n"
		if _, err := Parse([]byte(yaml)); err != nil {
			t.Fatalf("%s: unexpected error %v", interval, err)
		}
	}
}

func TestStrategyParamsKeepsUnknownMAType(t *testing.T) {
	cfg := Default()
	cfg.Indicators.MAType = "ema"
	if p := cfg.StrategyParams(); p.MAType != analysis.EMA {
		t.Fatalf("expected EMA, got %s", p.MAType)
	}
	cfg.Indicators.MAType = "WMA"
	if p := cfg.StrategyParams(); p.MAType != analysis.MAType("WMA") {
		t.Fatalf("expected raw WMA passed through, got %s", p.MAType)
	}
}

func TestInWorkingHours(t *testing.T) {
	cfg := Default()
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday morning", time.Date(2024, 3, 4, 9, 30, 0, 0, kyiv), true},
		{"before open", time.Date(2024, 3, 4, 7, 59, 0, 0, kyiv), false},
		{"close minute", time.Date(2024, 3, 4, 22, 0, 0, 0, kyiv), true},
		{"after close", time.Date(2024, 3, 4, 22, 0, 1, 0, kyiv), false},
		{"saturday", time.Date(2024, 3, 9, 12, 0, 0, 0, kyiv), false},
	}
	for _, tt := range tests {
		if got := cfg.InWorkingHours(tt.at.UTC()); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}

	cfg.Schedule.WorkingHours.Enabled = false
	if !cfg.InWorkingHours(time.Date(2024, 3, 9, 3, 0, 0, 0, kyiv)) {
		t.Error("disabled working hours must always allow passes")
	}
}

func TestStoreRefresh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("indicators:\n  rsi_period: 14\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	changed, err := store.Refresh()
	if err != nil || changed {
		t.Fatalf("expected no change, got changed=%v err=%v", changed, err)
	}

	if err := os.WriteFile(path, []byte("indicators:\n  rsi_period: 7\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	changed, err = store.Refresh()
	if err != nil || !changed {
		t.Fatalf("expected reload, got changed=%v err=%v", changed, err)
	}
	if store.Current().Indicators.RSIPeriod != 7 {
		t.Fatalf("expected rsi period 7, got %d", store.Current().Indicators.RSIPeriod)
	}

	if err := os.WriteFile(path, []byte("indicators:\n  rsi_period: -1\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	later := future.Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	_, err = store.Refresh()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if store.Current().Indicators.RSIPeriod != 7 {
		t.Fatal("previous config must stay active after a failed refresh")
	}
}

func TestLoadEnvFindsFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("RA_TEST_SECRET=hunter2\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("RA_TEST_SECRET", "")
	os.Unsetenv("RA_TEST_SECRET")

	old := EnvSearchPaths
	EnvSearchPaths = []string{filepath.Join(dir, "missing.env"), envPath}
	defer func() { EnvSearchPaths = old }()

	if got := LoadEnv(); got != envPath {
		t.Fatalf("expected %s, got %q", envPath, got)
	}
	if os.Getenv("RA_TEST_SECRET") != "hunter2" {
		t.Fatal("expected variable from .env")
	}
}
