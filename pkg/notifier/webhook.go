// Package notifier posts moderation action notices to a configurable
// webhook. Notification failures are logged and swallowed: enforcement
// must never depend on the notification channel being up.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const webhookTimeout = 5 * time.Second

// Webhook sends plain-text notifications. A nil or empty-URL webhook
// is valid and silently drops every message.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// New creates a webhook notifier. An empty URL disables notifications.
func New(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: webhookTimeout},
		logger: slog.Default().With("component", "notifier"),
	}
}

// Enabled reports whether a webhook URL is configured.
func (w *Webhook) Enabled() bool {
	return w != nil && w.url != ""
}

// Notify posts {"text": message} to the webhook. Errors are logged,
// never returned.
func (w *Webhook) Notify(ctx context.Context, message string) {
	if !w.Enabled() {
		return
	}

	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		w.logger.Error("Failed to encode notification", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		w.logger.Error("Failed to build notification request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Error("Failed to send notification", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		w.logger.Error("Notification webhook rejected message",
			"status", resp.StatusCode, "url", w.url)
	}
}

// Notifyf formats and sends a notification.
func (w *Webhook) Notifyf(ctx context.Context, format string, args ...any) {
	if !w.Enabled() {
		return
	}
	w.Notify(ctx, fmt.Sprintf(format, args...))
}
