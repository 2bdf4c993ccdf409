// Package audit writes one Elasticsearch document per processed
// update. The trail is optional and strictly best-effort: indexing
// failures are logged and dropped, never surfaced to the webhook.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"mat-bot/internal/common/config"
	"mat-bot/internal/common/database"
	apperrors "mat-bot/internal/common/errors"
	"mat-bot/internal/common/logger"
	"mat-bot/internal/models"
)

const (
	defaultIndex = "mat-bot-updates"
	indexTimeout = 2 * time.Second
)

// Entry is one processed-update document.
type Entry struct {
	RequestID  string       `json:"request_id"`
	UpdateID   int64        `json:"update_id"`
	ChatID     int64        `json:"chat_id"`
	Text       string       `json:"text"`
	Intent     string       `json:"intent"`
	Slots      models.Slots `json:"slots"`
	ReplyLen   int          `json:"reply_length"`
	DurationMS int64        `json:"duration_ms"`
	Timestamp  string       `json:"timestamp"`
}

// Recorder indexes entries into the configured audit index.
type Recorder struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewRecorder builds a recorder. With auditing disabled or no client
// available it degrades to a no-op.
func NewRecorder(es *database.ElasticsearchClient, cfg config.AuditConfig, log logger.Logger) *Recorder {
	if !cfg.Enabled || es == nil {
		return &Recorder{logger: log}
	}
	index := cfg.Index
	if index == "" {
		index = defaultIndex
	}
	return &Recorder{client: es.GetClient(), index: index, logger: log}
}

// Enabled reports whether entries actually reach Elasticsearch.
func (r *Recorder) Enabled() bool {
	return r.client != nil
}

// Record indexes one entry. Message text is redacted before it leaves
// the process.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r.client == nil {
		return
	}

	entry.Text = logger.Redact(entry.Text)
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		r.logger.WithError(err).Warn("audit entry marshal failed", map[string]interface{}{
			"requestID": entry.RequestID,
		})
		return
	}

	indexCtx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	res, err := r.client.Index(
		r.index,
		bytes.NewReader(payload),
		r.client.Index.WithContext(indexCtx),
	)
	if err != nil {
		r.logger.WithError(apperrors.NewAuditIndexFailedError(err)).Warn("audit index failed", map[string]interface{}{
			"requestID": entry.RequestID,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		r.logger.Warn("audit index rejected", map[string]interface{}{
			"requestID": entry.RequestID,
			"status":    res.StatusCode,
		})
	}
}
