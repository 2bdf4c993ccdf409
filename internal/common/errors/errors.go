// Package errors provides standardized error handling across the bot.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeUnknownIntent            ErrorCode = "UNKNOWN_INTENT"

	ErrCodeWebhookUnauthorized ErrorCode = "WEBHOOK_UNAUTHORIZED"
	ErrCodePayloadInvalid      ErrorCode = "PAYLOAD_INVALID"

	ErrCodeTelegramSendFailed ErrorCode = "TELEGRAM_SEND_FAILED"

	ErrCodeScheduleInvalid ErrorCode = "SCHEDULE_INVALID"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeAuditIndexFailed       ErrorCode = "AUDIT_INDEX_FAILED"

	ErrCodeImportFailed ErrorCode = "IMPORT_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", query, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("query: %s", query),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownIntentError creates a non-retryable unknown intent error.
func NewUnknownIntentError(intent string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownIntent,
		Message:   "No report builder registered for intent",
		Details:   fmt.Sprintf("intent: %s", intent),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookUnauthorizedError creates a non-retryable webhook auth error.
func NewWebhookUnauthorizedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookUnauthorized,
		Message:   "invalid signature",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadInvalidError creates a non-retryable payload validation error.
func NewPayloadInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadInvalid,
		Message:   "Update payload failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTelegramSendFailedError creates a retryable Telegram delivery error.
func NewTelegramSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTelegramSendFailed,
		Message:   "Telegram message delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScheduleInvalidError creates a non-retryable schedule format error.
func NewScheduleInvalidError(hhmm string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScheduleInvalid,
		Message:   "Report time is not a valid HH:MM",
		Details:   fmt.Sprintf("value: %s", hhmm),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditIndexFailedError creates a non-retryable audit index error; audit
// writes are fire-and-forget.
func NewAuditIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditIndexFailed,
		Message:   "Audit document indexing failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewImportFailedError creates a non-retryable CSV import error.
func NewImportFailedError(file string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeImportFailed,
		Message:   "CSV import failed",
		Details:   fmt.Sprintf("file: %s, error: %s", file, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry and Classification
// ==========================

// GetRetryCount returns the recommended retry count per error class.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeTelegramSendFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Validation and business errors: no retry
	}
}

// IsRetryableErrorCode checks whether a code is classified retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	s := string(code)
	switch {
	case strings.Contains(s, "DATABASE") || strings.Contains(s, "QUERY"):
		return "DATABASE"
	case strings.Contains(s, "TELEGRAM") || strings.Contains(s, "WEBHOOK") || strings.Contains(s, "PAYLOAD"):
		return "TELEGRAM"
	case strings.Contains(s, "SCHEDULE"):
		return "SCHEDULE"
	case strings.Contains(s, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(s, "AUDIT"):
		return "AUDIT"
	case strings.Contains(s, "IMPORT"):
		return "IMPORT"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps an error code to the status the webhook responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeWebhookUnauthorized:
		return http.StatusUnauthorized
	case ErrCodePayloadInvalid, ErrCodeScheduleInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
