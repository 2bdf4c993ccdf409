// Package bot routes incoming chat messages: greetings and farewells,
// the slash commands, and the Spanish KPI questions dispatched through
// the NLU layer.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mat-bot/internal/audit"
	"mat-bot/internal/catalog"
	apperrors "mat-bot/internal/common/errors"
	"mat-bot/internal/common/logger"
	"mat-bot/internal/common/metrics"
	"mat-bot/internal/common/observability"
	"mat-bot/internal/common/validation"
	"mat-bot/internal/kpi"
	"mat-bot/internal/models"
	"mat-bot/internal/nlu"
	"mat-bot/internal/report"
	"mat-bot/internal/scheduler"
	"mat-bot/internal/session"
	"mat-bot/internal/version"
)

const defaultReportTime = "07:00"

// Sender delivers a reply to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Deduper marks an update id as seen, returning false when it already
// was. The Redis client satisfies this.
type Deduper interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Options wires the handler's collaborators.
type Options struct {
	Logger    logger.Logger
	KPI       *kpi.Store
	Sessions  *session.Store
	Catalog   *catalog.Loader
	Telegram  Sender
	Scheduler *scheduler.Scheduler
	Audit     *audit.Recorder
	Deduper   Deduper
	Errors    *apperrors.ErrorHandler
	Obs       *observability.Observability

	WebhookSecret     string
	DefaultReportTime string
	DedupTTL          time.Duration

	// Now is the clock; defaults to UTC wall time.
	Now func() time.Time
}

// Handler owns the message routing and the webhook endpoint.
type Handler struct {
	logger    logger.Logger
	kpi       *kpi.Store
	sessions  *session.Store
	catalog   *catalog.Loader
	telegram  Sender
	scheduler *scheduler.Scheduler
	audit     *audit.Recorder
	dedup     Deduper
	errors    *apperrors.ErrorHandler
	obs       *observability.Observability

	secret      string
	defaultTime string
	dedupTTL    time.Duration
	now         func() time.Time
}

// New builds a handler from its options.
func New(opts Options) *Handler {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	defaultTime := opts.DefaultReportTime
	if defaultTime == "" {
		defaultTime = defaultReportTime
	}
	return &Handler{
		logger:      opts.Logger,
		kpi:         opts.KPI,
		sessions:    opts.Sessions,
		catalog:     opts.Catalog,
		telegram:    opts.Telegram,
		scheduler:   opts.Scheduler,
		audit:       opts.Audit,
		dedup:       opts.Deduper,
		errors:      opts.Errors,
		obs:         opts.Obs,
		secret:      opts.WebhookSecret,
		defaultTime: defaultTime,
		dedupTTL:    opts.DedupTTL,
		now:         now,
	}
}

// Outcome is the routed result of one message.
type Outcome struct {
	Reply  string
	Intent models.Intent
	Slots  models.Slots
}

// Respond routes one message to its reply. An empty reply with no
// error means the message needs no answer. Intent and slots are only
// set when the message went through the NLU path.
func (h *Handler) Respond(ctx context.Context, chatID int64, text string) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, nil
	}

	if err := h.sessions.TouchLastSeen(ctx, chatID); err != nil {
		return Outcome{}, err
	}

	if nlu.IsGreeting(text) {
		return Outcome{Reply: helpText}, nil
	}
	if nlu.IsFarewell(text) {
		if err := h.sessions.TouchLastSeen(ctx, chatID); err != nil {
			return Outcome{}, err
		}
		return Outcome{Reply: farewellText}, nil
	}

	low := strings.ToLower(text)
	switch {
	case strings.HasPrefix(low, "/version"):
		return Outcome{Reply: version.Text()}, nil
	case strings.HasPrefix(low, "/setreport"):
		reply, err := h.setReport(ctx, chatID, text)
		return Outcome{Reply: reply}, err
	case strings.HasPrefix(low, "/subscribe"):
		reply, err := h.subscribe(ctx, chatID)
		return Outcome{Reply: reply}, err
	case strings.HasPrefix(low, "/unsubscribe"):
		reply, err := h.unsubscribe(ctx, chatID)
		return Outcome{Reply: reply}, err
	case strings.HasPrefix(low, "/testrun"):
		reply, err := report.BuildDaily(ctx, h.kpi, h.now())
		return Outcome{Reply: reply}, err
	}

	sites, areas := h.catalog.KnownValues(ctx)
	intent := nlu.DetectIntent(text)
	slots := nlu.ExtractSlotsAt(text, sites, areas, h.now())
	metrics.IntentsDetected.WithLabelValues(string(intent)).Inc()

	if !intent.IsKPI() {
		return Outcome{Reply: fallbackText, Intent: intent, Slots: slots}, nil
	}

	if slots.DateFrom == "" && slots.DateTo == "" {
		slots.DateFrom, slots.DateTo = report.MonthWindow(h.now())
	}

	reply, err := report.Execute(ctx, h.kpi, intent, slots, h.now())
	if err != nil {
		return Outcome{Intent: intent, Slots: slots}, err
	}
	return Outcome{Reply: reply, Intent: intent, Slots: slots}, nil
}

func (h *Handler) setReport(ctx context.Context, chatID int64, text string) (string, error) {
	parts := strings.Fields(text)
	if len(parts) != 2 || !strings.Contains(parts[1], ":") {
		return replyBadTimeFormat, nil
	}

	hour, minute, err := validation.ParseReportTime(parts[1])
	if err != nil {
		return replyUnparseableTime, nil
	}
	hhmm := fmt.Sprintf("%02d:%02d", hour, minute)

	if err := h.sessions.SetReportTime(ctx, chatID, hhmm); err != nil {
		return "", err
	}
	if err := h.scheduler.Set(chatID, hhmm); err != nil {
		return "", err
	}
	return fmt.Sprintf(replyReportTimeSetFmt, hhmm), nil
}

func (h *Handler) subscribe(ctx context.Context, chatID int64) (string, error) {
	hhmm, err := h.sessions.GetReportTime(ctx, chatID)
	if err != nil {
		return "", err
	}
	if hhmm == "" {
		hhmm = h.defaultTime
	}

	if err := h.sessions.SetReportTime(ctx, chatID, hhmm); err != nil {
		return "", err
	}
	if err := h.scheduler.Set(chatID, hhmm); err != nil {
		return "", err
	}
	return fmt.Sprintf(replySubscribedFmt, hhmm), nil
}

func (h *Handler) unsubscribe(ctx context.Context, chatID int64) (string, error) {
	h.scheduler.Remove(chatID)
	if err := h.sessions.ClearReportTime(ctx, chatID); err != nil {
		return "", err
	}
	return replyUnsubscribed, nil
}
