// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_updates_received_total",
			Help: "Total number of webhook updates received",
		},
	)

	UpdatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_dropped_total",
			Help: "Total number of updates dropped before handling",
		},
		[]string{"reason"},
	)

	IntentsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_intents_detected_total",
			Help: "Total number of detected intents by type",
		},
		[]string{"intent"},
	)

	RepliesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_replies_sent_total",
			Help: "Total number of replies sent to Telegram",
		},
		[]string{"status"},
	)

	KPIQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bot_kpi_query_duration_seconds",
			Help: "Duration of KPI queries in seconds",
		},
		[]string{"intent"},
	)

	ScheduledReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_scheduled_reports_total",
			Help: "Total number of scheduled daily reports by outcome",
		},
		[]string{"status"},
	)

	WebhookDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "bot_webhook_duration_seconds",
			Help: "Duration of webhook request handling in seconds",
		},
	)
)
