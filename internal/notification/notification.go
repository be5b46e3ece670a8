package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const DefaultTelegramURL = "https://api.telegram.org"

// Notifier delivers alert text
type Notifier interface {
	Send(ctx context.Context, text string) error
	Name() string
	IsEnabled() bool
}

// SignalAlert carries what goes into a signal message
type SignalAlert struct {
	Side     string
	Symbol   string
	Price    float64
	Pattern  string
	RSI      float64
	MA       float64
	MAType   string
	MAPeriod int
	BarTime  string
}

// FormatSignal renders the alert text. Prices and MA use 5 decimals, RSI 2.
func FormatSignal(a SignalAlert) string {
	emoji := "🟢"
	if a.Side == "SELL" {
		emoji = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s signal on %s @ %.5f", emoji, a.Side, a.Symbol, a.Price)
	if a.Pattern != "" {
		fmt.Fprintf(&b, "\nPattern: %s", a.Pattern)
	}
	fmt.Fprintf(&b, "\nRSI: %.2f", a.RSI)
	if a.MAType != "" {
		fmt.Fprintf(&b, "\n%s(%d): %.5f", a.MAType, a.MAPeriod, a.MA)
	}
	if a.BarTime != "" {
		fmt.Fprintf(&b, "\nBar: %s", a.BarTime)
	}
	return b.String()
}

// =============================================================================
// TELEGRAM NOTIFIER
// =============================================================================

// TelegramConfig holds Telegram configuration
type TelegramConfig struct {
	BaseURL        string
	BotToken       string
	ChatID         string
	Enabled        bool
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// TelegramNotifier sends notifications via Telegram
type TelegramNotifier struct {
	baseURL     string
	botToken    string
	chatID      string
	enabled     bool
	maxAttempts int
	baseDelay   time.Duration
	client      *http.Client
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(config TelegramConfig) *TelegramNotifier {
	base := config.BaseURL
	if base == "" {
		base = DefaultTelegramURL
	}
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &TelegramNotifier{
		baseURL:     strings.TrimRight(base, "/"),
		botToken:    config.BotToken,
		chatID:      config.ChatID,
		enabled:     config.Enabled && config.BotToken != "" && config.ChatID != "",
		maxAttempts: attempts,
		baseDelay:   config.RetryBaseDelay,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) Name() string {
	return "telegram"
}

func (t *TelegramNotifier) IsEnabled() bool {
	return t.enabled
}

// Send posts text, retrying with exponential backoff (base, 2*base, ...)
// capped at 10s between attempts.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	if !t.enabled {
		return nil
	}

	var lastErr error
	delay := t.baseDelay
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if lastErr = t.send(ctx, text); lastErr == nil {
			return nil
		}
		if attempt == t.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("telegram send aborted after %d attempts: %w", attempt, lastErr)
		case <-time.After(delay):
		}
		delay *= 2
		if delay > 10*time.Second {
			delay = 10 * time.Second
		}
	}
	return fmt.Errorf("telegram send failed after %d attempts: %w", t.maxAttempts, lastErr)
}

func (t *TelegramNotifier) send(ctx context.Context, text string) error {
	payload := map[string]interface{}{
		"chat_id": t.chatID,
		"text":    text,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}
