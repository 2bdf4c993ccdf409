package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mat-bot/internal/audit"
	apperrors "mat-bot/internal/common/errors"
	"mat-bot/internal/common/logger"
	"mat-bot/internal/common/metrics"
	"mat-bot/internal/telegram"
)

const (
	secretHeader = "X-Telegram-Bot-Api-Secret-Token"
	maxBodyBytes = 1 << 20
)

// HandleWebhook processes one Telegram update. Malformed and duplicate
// updates are dropped with a 200 so Telegram stops redelivering them;
// processing failures return 500 and release the dedup mark so the
// redelivery gets another chance.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.WebhookDuration.Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "method not allowed"})
		return
	}

	metrics.UpdatesReceived.Inc()

	if h.secret != "" && r.Header.Get(secretHeader) != h.secret {
		metrics.UpdatesDropped.WithLabelValues("unauthorized").Inc()
		h.errors.HandleHTTPError(w, r, apperrors.NewWebhookUnauthorizedError())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		metrics.UpdatesDropped.WithLabelValues("body_read").Inc()
		h.errors.HandleHTTPError(w, r, apperrors.NewPayloadInvalidError(err.Error()))
		return
	}

	requestID := uuid.New().String()
	log := h.logger.WithFields(map[string]interface{}{"requestID": requestID})

	if err := telegram.ValidateUpdate(body); err != nil {
		metrics.UpdatesDropped.WithLabelValues("invalid_payload").Inc()
		log.WithError(err).Warn("dropping invalid update", nil)
		writeOK(w)
		return
	}

	var update telegram.Update
	if err := json.Unmarshal(body, &update); err != nil {
		metrics.UpdatesDropped.WithLabelValues("invalid_payload").Inc()
		log.WithError(err).Warn("dropping undecodable update", nil)
		writeOK(w)
		return
	}

	ctx := r.Context()
	dedupKey := fmt.Sprintf("update:%d", update.UpdateID)
	if h.dedup != nil {
		fresh, err := h.dedup.SetNX(ctx, dedupKey, 1, h.dedupTTL)
		if err != nil {
			// Redis being down must not drop messages.
			log.WithError(err).Warn("dedup check failed", nil)
		} else if !fresh {
			metrics.UpdatesDropped.WithLabelValues("duplicate").Inc()
			log.Debug("dropping duplicate update", map[string]interface{}{
				"updateID": update.UpdateID,
			})
			writeOK(w)
			return
		}
	}

	outcome, err := h.Respond(ctx, update.ChatID(), update.Text())
	if err != nil {
		h.releaseDedup(ctx, dedupKey)
		h.recordUpdate(ctx, start, "error")
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	if outcome.Reply != "" {
		if err := h.telegram.SendMessage(ctx, update.ChatID(), outcome.Reply); err != nil {
			h.releaseDedup(ctx, dedupKey)
			h.recordUpdate(ctx, start, "error")
			h.errors.HandleHTTPError(w, r, err)
			return
		}
	}

	if h.audit != nil && h.audit.Enabled() {
		entry := audit.Entry{
			RequestID:  requestID,
			UpdateID:   update.UpdateID,
			ChatID:     update.ChatID(),
			Text:       logger.Redact(update.Text()),
			Intent:     string(outcome.Intent),
			Slots:      outcome.Slots,
			ReplyLen:   len(outcome.Reply),
			DurationMS: time.Since(start).Milliseconds(),
		}
		go h.audit.Record(context.Background(), entry)
	}

	h.recordUpdate(ctx, start, "ok")
	writeOK(w)
}

func (h *Handler) releaseDedup(ctx context.Context, key string) {
	if h.dedup == nil {
		return
	}
	if err := h.dedup.Del(ctx, key); err != nil {
		h.logger.WithError(err).Warn("dedup release failed", nil)
	}
}

func (h *Handler) recordUpdate(ctx context.Context, start time.Time, status string) {
	if h.obs == nil {
		return
	}
	h.obs.RecordUpdateProcessed(ctx, status)
	h.obs.RecordUpdateDuration(ctx, time.Since(start), status)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
