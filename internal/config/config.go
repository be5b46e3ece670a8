package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"reversal-alert/internal/analysis"
	"reversal-alert/internal/exchange"
	"reversal-alert/internal/strategy"
)

// AppConfig holds the entire application configuration
type AppConfig struct {
	Instrument   InstrumentConfig   `yaml:"instrument"`
	Indicators   IndicatorsConfig   `yaml:"indicators"`
	Signal       SignalConfig       `yaml:"signal"`
	MarketData   MarketDataConfig   `yaml:"market_data"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	Notification NotificationConfig `yaml:"notification"`
	Journal      JournalConfig      `yaml:"journal"`
	API          APIConfig          `yaml:"api"`
	System       SystemConfig       `yaml:"system"`

	// Secrets (Loaded from .env, not yaml)
	TwelveData struct {
		APIKey string
	} `yaml:"-"`
	Binance struct {
		APIKey     string
		APISecret  string
		UseTestnet bool
	} `yaml:"-"`
	Telegram struct {
		BotToken string
		ChatID   string
	} `yaml:"-"`
}

type InstrumentConfig struct {
	Symbol   string `yaml:"symbol"`
	Interval string `yaml:"interval"`
	Lookback int    `yaml:"lookback"`
}

type IndicatorsConfig struct {
	RSIPeriod int    `yaml:"rsi_period"`
	MAPeriod  int    `yaml:"ma_period"`
	MAType    string `yaml:"ma_type"` // SMA or EMA; anything else runs as SMA
}

type SignalConfig struct {
	RSIBuyBelow  float64 `yaml:"rsi_buy_below"`
	RSISellAbove float64 `yaml:"rsi_sell_above"`
	BuyBand      float64 `yaml:"buy_band"`
	SellBand     float64 `yaml:"sell_band"`
}

type MarketDataConfig struct {
	Provider          string `yaml:"provider"` // twelvedata | binance
	BaseURL           string `yaml:"base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	RateLimitFloor    int    `yaml:"rate_limit_floor"`
	RateLimitCooldown int    `yaml:"rate_limit_cooldown_seconds"`
}

type ScheduleConfig struct {
	IntervalMinutes int                `yaml:"interval_minutes"`
	WorkingHours    WorkingHoursConfig `yaml:"working_hours"`
}

type WorkingHoursConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Timezone     string `yaml:"timezone"`
	Start        string `yaml:"start"` // HH:MM
	End          string `yaml:"end"`   // HH:MM, inclusive
	WeekdaysOnly bool   `yaml:"weekdays_only"`
}

type NotificationConfig struct {
	Telegram struct {
		Enabled        bool   `yaml:"enabled"`
		BaseURL        string `yaml:"base_url"`
		MaxAttempts    int    `yaml:"max_attempts"`
		RetryBaseDelay int    `yaml:"retry_base_delay_ms"`
		NotifyStartup  bool   `yaml:"notify_startup"`
	} `yaml:"telegram"`
}

type JournalConfig struct {
	Path string `yaml:"path"` // empty disables the journal
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type SystemConfig struct {
	LogLevel string `yaml:"log_level"`
}

// ConfigurationError reports an unusable configuration value
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// Default returns the configuration used when config.yaml leaves a field out
func Default() *AppConfig {
	cfg := &AppConfig{
		Instrument: InstrumentConfig{Symbol: "EUR/USD", Interval: "5min", Lookback: 50},
		Indicators: IndicatorsConfig{RSIPeriod: 14, MAPeriod: 20, MAType: "EMA"},
		Signal: SignalConfig{
			RSIBuyBelow:  70,
			RSISellAbove: 60,
			BuyBand:      0.99,
			SellBand:     1.01,
		},
		MarketData: MarketDataConfig{
			Provider:          "twelvedata",
			TimeoutSeconds:    10,
			RateLimitFloor:    10,
			RateLimitCooldown: 60,
		},
		Schedule: ScheduleConfig{
			IntervalMinutes: 5,
			WorkingHours: WorkingHoursConfig{
				Enabled:      true,
				Timezone:     "Europe/Kyiv",
				Start:        "08:00",
				End:          "22:00",
				WeekdaysOnly: true,
			},
		},
		API:    APIConfig{Enabled: false, Listen: ":8080"},
		System: SystemConfig{LogLevel: "info"},
	}
	cfg.Notification.Telegram.Enabled = true
	cfg.Notification.Telegram.MaxAttempts = 3
	cfg.Notification.Telegram.RetryBaseDelay = 2000
	cfg.Notification.Telegram.NotifyStartup = true
	return cfg
}

// EnvSearchPaths are tried in order; the first .env found wins.
var EnvSearchPaths = []string{".env", "../.env", "../../.env"}

// ConfigSearchPaths are tried in order when no explicit path is given.
var ConfigSearchPaths = []string{"config.yaml", "../../config.yaml"}

// LoadEnv loads the first .env found and returns its path ("" if none).
func LoadEnv() string {
	for _, path := range EnvSearchPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// ResolvePath returns the config.yaml to use when path is empty.
func ResolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	for _, p := range ConfigSearchPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("config.yaml not found in %v", ConfigSearchPaths)
}

// LoadConfig reads secrets from the environment and tunables from the YAML file at path
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(yamlFile)
}

// Parse builds a config from YAML bytes plus the current environment.
func Parse(data []byte) (*AppConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml: %w", err)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	cfg.TwelveData.APIKey = os.Getenv("TWELVE_DATA_API_KEY")
	cfg.Binance.APIKey = os.Getenv("BINANCE_API_KEY")
	cfg.Binance.APISecret = os.Getenv("BINANCE_API_SECRET")
	cfg.Binance.UseTestnet, _ = strconv.ParseBool(os.Getenv("USE_TESTNET"))
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")

	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Instrument.Symbol = v
	}
	if v := os.Getenv("INTERVAL"); v != "" {
		cfg.Instrument.Interval = v
	}
}

// Validate checks ranges and enumerations.
func (c *AppConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.Instrument.Symbol) == "":
		return &ConfigurationError{Field: "instrument.symbol", Reason: "must not be empty"}
	case strings.TrimSpace(c.Instrument.Interval) == "":
		return &ConfigurationError{Field: "instrument.interval", Reason: "must not be empty"}
	case c.Instrument.Lookback < analysis.MinBars:
		return &ConfigurationError{Field: "instrument.lookback", Reason: fmt.Sprintf("must be at least %d", analysis.MinBars)}
	case c.Indicators.RSIPeriod < 1:
		return &ConfigurationError{Field: "indicators.rsi_period", Reason: "must be positive"}
	case c.Indicators.MAPeriod < 1:
		return &ConfigurationError{Field: "indicators.ma_period", Reason: "must be positive"}
	case c.Signal.RSIBuyBelow < 0 || c.Signal.RSIBuyBelow > 100:
		return &ConfigurationError{Field: "signal.rsi_buy_below", Reason: "must be within [0,100]"}
	case c.Signal.RSISellAbove < 0 || c.Signal.RSISellAbove > 100:
		return &ConfigurationError{Field: "signal.rsi_sell_above", Reason: "must be within [0,100]"}
	case c.Signal.BuyBand <= 0 || c.Signal.BuyBand >= 2:
		return &ConfigurationError{Field: "signal.buy_band", Reason: "must be within (0,2)"}
	case c.Signal.SellBand <= 0 || c.Signal.SellBand >= 2:
		return &ConfigurationError{Field: "signal.sell_band", Reason: "must be within (0,2)"}
	case c.MarketData.Provider != "twelvedata" && c.MarketData.Provider != "binance":
		return &ConfigurationError{Field: "market_data.provider", Reason: fmt.Sprintf("unknown provider %q", c.MarketData.Provider)}
	case c.MarketData.Provider == "binance" && !validBinanceInterval(c.Instrument.Interval):
		return &ConfigurationError{Field: "instrument.interval", Reason: fmt.Sprintf("interval %q is not supported by binance", c.Instrument.Interval)}
	case c.MarketData.TimeoutSeconds < 1:
		return &ConfigurationError{Field: "market_data.timeout_seconds", Reason: "must be positive"}
	case c.MarketData.RateLimitCooldown < 0:
		return &ConfigurationError{Field: "market_data.rate_limit_cooldown_seconds", Reason: "must not be negative"}
	case c.Schedule.IntervalMinutes < 1:
		return &ConfigurationError{Field: "schedule.interval_minutes", Reason: "must be positive"}
	case c.Notification.Telegram.MaxAttempts < 1:
		return &ConfigurationError{Field: "notification.telegram.max_attempts", Reason: "must be positive"}
	}

	if c.Schedule.WorkingHours.Enabled {
		if _, err := c.Location(); err != nil {
			return &ConfigurationError{Field: "schedule.working_hours.timezone", Reason: err.Error()}
		}
		start, err := parseClock(c.Schedule.WorkingHours.Start)
		if err != nil {
			return &ConfigurationError{Field: "schedule.working_hours.start", Reason: err.Error()}
		}
		end, err := parseClock(c.Schedule.WorkingHours.End)
		if err != nil {
			return &ConfigurationError{Field: "schedule.working_hours.end", Reason: err.Error()}
		}
		if end < start {
			return &ConfigurationError{Field: "schedule.working_hours", Reason: "end is before start"}
		}
	}
	return nil
}

// StrategyParams converts the indicator and signal sections for the engine.
// The MA type is passed through unparsed so the engine can fall back and warn.
func (c *AppConfig) StrategyParams() strategy.Params {
	maType, ok := analysis.ParseMAType(c.Indicators.MAType)
	if !ok {
		maType = analysis.MAType(c.Indicators.MAType)
	}
	return strategy.Params{
		RSIPeriod:    c.Indicators.RSIPeriod,
		MAPeriod:     c.Indicators.MAPeriod,
		MAType:       maType,
		RSIBuyBelow:  c.Signal.RSIBuyBelow,
		RSISellAbove: c.Signal.RSISellAbove,
		BuyBand:      c.Signal.BuyBand,
		SellBand:     c.Signal.SellBand,
	}
}

// Location resolves the working-hours time zone.
func (c *AppConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Schedule.WorkingHours.Timezone)
}

// InWorkingHours reports whether t falls inside the configured trading window.
func (c *AppConfig) InWorkingHours(t time.Time) bool {
	wh := c.Schedule.WorkingHours
	if !wh.Enabled {
		return true
	}
	loc, err := c.Location()
	if err != nil {
		return true
	}
	local := t.In(loc)
	if wh.WeekdaysOnly && (local.Weekday() == time.Saturday || local.Weekday() == time.Sunday) {
		return false
	}
	start, _ := parseClock(wh.Start)
	end, _ := parseClock(wh.End)
	now := local.Hour()*60 + local.Minute()
	// end is inclusive to the minute: 22:00:00 is in, 22:00:01 is out
	if now == end && (local.Second() > 0 || local.Nanosecond() > 0) {
		return false
	}
	return now >= start && now <= end
}

// Interval is the scheduling period.
func (c *AppConfig) Interval() time.Duration {
	return time.Duration(c.Schedule.IntervalMinutes) * time.Minute
}

// FetchTimeout bounds one market-data request.
func (c *AppConfig) FetchTimeout() time.Duration {
	return time.Duration(c.MarketData.TimeoutSeconds) * time.Second
}

func validBinanceInterval(interval string) bool {
	_, ok := exchange.BinanceInterval(interval)
	return ok
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
