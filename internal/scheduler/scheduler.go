// Package scheduler drives the daily report subscriptions. Each chat
// has at most one job, keyed by its HH:MM wall-clock time in UTC, and
// the loop fires it once per day at that minute.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "mat-bot/internal/common/errors"
	"mat-bot/internal/common/logger"
	"mat-bot/internal/common/metrics"
	"mat-bot/internal/common/validation"
	"mat-bot/internal/models"
)

const (
	// tickInterval samples well below a minute so no minute is skipped
	// between ticks.
	tickInterval = 20 * time.Second

	reportTimeout = 30 * time.Second

	// alertFailureThreshold is the consecutive failure count that
	// triggers one operator alert per streak.
	alertFailureThreshold = 3
)

// ReportFunc builds and delivers the daily report for one chat.
type ReportFunc func(ctx context.Context, chatID int64) error

// Alerter receives operator alerts about failing subscriptions.
type Alerter interface {
	ReportFailure(ctx context.Context, chatID int64, consecutive int, err error)
}

type jobTime struct {
	hour   int
	minute int
}

// Scheduler holds the subscription jobs and runs them when due.
type Scheduler struct {
	mu       sync.Mutex
	jobs     map[int64]jobTime
	lastRun  map[int64]string
	failures map[int64]int

	report  ReportFunc
	alerter Alerter
	logger  logger.Logger
}

// New builds a scheduler. alerter may be nil when no operator channel
// is configured.
func New(report ReportFunc, alerter Alerter, log logger.Logger) *Scheduler {
	return &Scheduler{
		jobs:     make(map[int64]jobTime),
		lastRun:  make(map[int64]string),
		failures: make(map[int64]int),
		report:   report,
		alerter:  alerter,
		logger:   log,
	}
}

// Set registers or replaces the daily job for a chat.
func (s *Scheduler) Set(chatID int64, hhmm string) error {
	hour, minute, err := validation.ParseReportTime(hhmm)
	if err != nil {
		return apperrors.NewScheduleInvalidError(hhmm)
	}

	s.mu.Lock()
	s.jobs[chatID] = jobTime{hour: hour, minute: minute}
	s.mu.Unlock()

	s.logger.Info("report job scheduled", map[string]interface{}{
		"jobID": fmt.Sprintf("rep_%d", chatID),
		"time":  hhmm,
	})
	return nil
}

// Remove drops the daily job for a chat, if one exists.
func (s *Scheduler) Remove(chatID int64) {
	s.mu.Lock()
	_, existed := s.jobs[chatID]
	delete(s.jobs, chatID)
	delete(s.lastRun, chatID)
	delete(s.failures, chatID)
	s.mu.Unlock()

	if existed {
		s.logger.Info("report job removed", map[string]interface{}{
			"jobID": fmt.Sprintf("rep_%d", chatID),
		})
	}
}

// Restore re-registers the jobs persisted across restarts. Sessions
// with an unparseable time are skipped. Returns the number restored.
func (s *Scheduler) Restore(sessions []models.UserSession) int {
	restored := 0
	for _, session := range sessions {
		if err := s.Set(session.ChatID, session.ReportTime); err != nil {
			s.logger.Warn("skipping subscription with invalid time", map[string]interface{}{
				"chatID": session.ChatID,
				"time":   session.ReportTime,
			})
			continue
		}
		restored++
	}
	return restored
}

// Run ticks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", map[string]interface{}{
		"tickInterval": tickInterval.String(),
	})

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped", nil)
			return
		case now := <-ticker.C:
			s.runDue(ctx, now)
		}
	}
}

// runDue fires every job whose configured minute matches now and that
// has not already run in this minute.
func (s *Scheduler) runDue(ctx context.Context, now time.Time) {
	now = now.UTC()
	minuteKey := now.Format("2006-01-02 15:04")

	s.mu.Lock()
	var due []int64
	for chatID, at := range s.jobs {
		if at.hour != now.Hour() || at.minute != now.Minute() {
			continue
		}
		if s.lastRun[chatID] == minuteKey {
			continue
		}
		s.lastRun[chatID] = minuteKey
		due = append(due, chatID)
	}
	s.mu.Unlock()

	for _, chatID := range due {
		s.deliver(ctx, chatID)
	}
}

func (s *Scheduler) deliver(ctx context.Context, chatID int64) {
	reportCtx, cancel := context.WithTimeout(ctx, reportTimeout)
	err := s.report(reportCtx, chatID)
	cancel()

	if err == nil {
		metrics.ScheduledReports.WithLabelValues("sent").Inc()
		s.mu.Lock()
		s.failures[chatID] = 0
		s.mu.Unlock()
		s.logger.Info("daily report delivered", map[string]interface{}{
			"chatID": chatID,
		})
		return
	}

	metrics.ScheduledReports.WithLabelValues("error").Inc()

	s.mu.Lock()
	s.failures[chatID]++
	consecutive := s.failures[chatID]
	s.mu.Unlock()

	s.logger.WithError(err).Error("daily report failed", map[string]interface{}{
		"chatID":   chatID,
		"failures": consecutive,
	})

	if s.alerter != nil && consecutive == alertFailureThreshold {
		s.alerter.ReportFailure(ctx, chatID, consecutive, err)
	}
}
