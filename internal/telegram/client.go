package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mat-bot/internal/common/config"
	apperrors "mat-bot/internal/common/errors"
	httpclient "mat-bot/internal/common/http"
	"mat-bot/internal/common/logger"
	"mat-bot/internal/common/metrics"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// Client sends messages through the Bot API with bounded retries.
type Client struct {
	http       *httpclient.Client
	baseURL    string
	token      string
	maxRetries int
	logger     logger.Logger
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// NewClient builds a Bot API client from the telegram section of the
// configuration.
func NewClient(cfg config.TelegramConfig, log logger.Logger) *Client {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15000
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = apperrors.GetRetryCount(apperrors.ErrCodeTelegramSendFailed)
	}
	return &Client{
		http:       httpclient.NewClient(config.GetDuration(timeout)),
		baseURL:    baseURL,
		token:      cfg.Token,
		maxRetries: maxRetries,
		logger:     log,
	}
}

// SendMessage posts a text reply to a chat. Empty text is silently
// skipped. Transport failures and 429/5xx responses are retried with
// exponential backoff; other Bot API rejections fail immediately.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if text == "" {
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	payload := sendMessageRequest{ChatID: chatID, Text: text}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(100*(1<<uint(attempt-2))) * time.Millisecond
			select {
			case <-ctx.Done():
				metrics.RepliesSent.WithLabelValues("failed").Inc()
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, status, err := c.http.PostJSON(ctx, url, payload)
		if err != nil {
			lastErr = err
			c.logger.Warn("telegram send attempt failed", map[string]interface{}{
				"chatID":  chatID,
				"attempt": attempt,
				"error":   logger.Redact(err.Error()),
			})
			continue
		}

		if status == http.StatusOK {
			metrics.RepliesSent.WithLabelValues("sent").Inc()
			c.logger.Debug("telegram message sent", map[string]interface{}{
				"chatID": chatID,
				"length": len(text),
			})
			return nil
		}

		lastErr = fmt.Errorf("telegram API status %d: %s", status, logger.Redact(string(body)))
		if status != http.StatusTooManyRequests && status < 500 {
			break
		}
		c.logger.Warn("telegram send attempt rejected", map[string]interface{}{
			"chatID":  chatID,
			"attempt": attempt,
			"status":  status,
		})
	}

	metrics.RepliesSent.WithLabelValues("failed").Inc()
	sendErr := apperrors.NewTelegramSendFailedError(lastErr)
	c.logger.Error("telegram send failed", map[string]interface{}{
		"chatID": chatID,
		"error":  logger.Redact(sendErr.Error()),
	})
	return sendErr
}
