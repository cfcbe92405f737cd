package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kendall-kelly/cleancans-api/models"
	"golang.org/x/time/rate"
)

// ErrNoWebhook is returned when a notification has no webhook URL
var ErrNoWebhook = errors.New("no webhook url configured")

type webhookPayload struct {
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	JobID     string `json:"jobId"`
	Timestamp string `json:"timestamp"`
}

// WebhookSender posts notifications to an SMS webhook (Zapier, Twilio
// functions, ...). Requests are rate limited.
type WebhookSender struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewWebhookSender creates a sender allowing perSecond requests per second.
// A non-positive perSecond disables the limit.
func NewWebhookSender(timeout time.Duration, perSecond float64) *WebhookSender {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &WebhookSender{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		now:        time.Now,
	}
}

// Deliver posts n to its webhook URL. Any non-2xx response is a failure.
func (w *WebhookSender) Deliver(ctx context.Context, n models.Notification) error {
	if n.WebhookURL == "" {
		return ErrNoWebhook
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(webhookPayload{
		Phone:     n.Destination,
		Message:   n.Message,
		Type:      n.Category,
		JobID:     n.JobID,
		Timestamp: w.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

// LogSender writes notifications to the log instead of delivering them.
// It is used when no webhook is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Deliver logs the notification and always succeeds
func (l *LogSender) Deliver(ctx context.Context, n models.Notification) error {
	l.logger.InfoContext(ctx, "sms (log only)",
		"phone", n.Destination, "type", n.Category, "job_id", n.JobID, "message", n.Message)
	return nil
}
