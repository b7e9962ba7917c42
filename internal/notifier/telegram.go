// Package notifier delivers discrete text messages to the
// notification channel. Each submission stands alone: a failed send
// never blocks the next one.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Config holds notification channel configuration.
type Config struct {
	BaseURL  string
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// Telegram submits messages through the Telegram bot API with basic
// markdown emphasis.
type Telegram struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
	chatID     string
	logger     *slog.Logger
}

// New creates a new Telegram notifier.
func New(cfg Config, logger *slog.Logger) *Telegram {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Telegram{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:  baseURL,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		logger:   logger.With("component", "notifier"),
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send submits one text block. No delivery acknowledgment beyond the
// HTTP status is required.
func (t *Telegram) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
	}

	t.logger.Debug("sent notification", "chars", len(text))

	return nil
}
