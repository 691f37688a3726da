// Package alert pushes out-of-band notifications about trades and failures.
package alert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultAPIBase = "https://api.telegram.org"

// Telegram sends messages through the Telegram bot API.
type Telegram struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
	log     zerolog.Logger
}

// TelegramOption configures Telegram construction.
type TelegramOption func(*Telegram)

// WithAPIBase overrides the API endpoint (tests point this at a local server).
func WithAPIBase(base string) TelegramOption {
	return func(t *Telegram) {
		if base != "" {
			t.apiBase = strings.TrimSuffix(base, "/")
		}
	}
}

// NewTelegram builds a notifier for one bot token and chat.
func NewTelegram(token, chatID string, log zerolog.Logger, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		token:   token,
		chatID:  chatID,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Notify posts one message to the configured chat.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram send: status %d: %s", resp.StatusCode, body)
	}
	t.log.Debug().Str("chat_id", t.chatID).Msg("alert sent")
	return nil
}
