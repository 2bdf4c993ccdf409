// internal/session/store.go

// Package session persists per-chat state: when the chat was last seen
// and the daily report time the chat subscribed to.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mat-bot/internal/common/logger"
	"mat-bot/internal/models"
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// EnsureSchema creates the session table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_sessions (
			chat_id      BIGINT PRIMARY KEY,
			report_time  TEXT,
			last_seen_at TIMESTAMPTZ
		)`)
	if err != nil {
		return fmt.Errorf("create session schema: %w", err)
	}
	return nil
}

// TouchLastSeen records activity for the chat, inserting the row on
// first contact.
func (s *Store) TouchLastSeen(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_sessions (chat_id, last_seen_at) VALUES ($1, $2)
		ON CONFLICT (chat_id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at`,
		chatID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// SetReportTime subscribes the chat to a daily report at the given
// HH:MM.
func (s *Store) SetReportTime(ctx context.Context, chatID int64, hhmm string) error {
	return s.setReportTime(ctx, chatID, hhmm)
}

// ClearReportTime cancels the chat's daily report.
func (s *Store) ClearReportTime(ctx context.Context, chatID int64) error {
	return s.setReportTime(ctx, chatID, nil)
}

func (s *Store) setReportTime(ctx context.Context, chatID int64, value interface{}) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_sessions (chat_id, report_time) VALUES ($1, $2)
		ON CONFLICT (chat_id) DO UPDATE SET report_time = EXCLUDED.report_time`,
		chatID, value)
	if err != nil {
		return fmt.Errorf("set report time: %w", err)
	}
	return nil
}

// GetReportTime returns the chat's report time, empty when the chat is
// unknown or not subscribed.
func (s *Store) GetReportTime(ctx context.Context, chatID int64) (string, error) {
	var reportTime sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT report_time FROM user_sessions WHERE chat_id = $1`, chatID).
		Scan(&reportTime)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get report time: %w", err)
	}
	return reportTime.String, nil
}

// AllWithReportTime lists every subscribed chat, used to restore
// scheduled reports on startup.
func (s *Store) AllWithReportTime(ctx context.Context) ([]models.UserSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, report_time FROM user_sessions WHERE report_time IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []models.UserSession
	for rows.Next() {
		var sess models.UserSession
		if err := rows.Scan(&sess.ChatID, &sess.ReportTime); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return out, nil
}
