// internal/models/usersession.go
package models

import "time"

// UserSession tracks one Telegram chat: when it was last seen and, for
// subscribed chats, the configured daily report time (HH:MM, UTC).
type UserSession struct {
	ChatID     int64      `json:"chatId" db:"chat_id"`
	ReportTime string     `json:"reportTime,omitempty" db:"report_time"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty" db:"last_seen_at"`
}

// Subscribed reports whether the chat receives the daily report.
func (s *UserSession) Subscribed() bool {
	return s.ReportTime != ""
}
