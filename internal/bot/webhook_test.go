package bot

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mat-bot/internal/telegram"
)

func postUpdate(t *testing.T, env *testEnv, secret string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewReader(body))
	if secret != "" {
		req.Header.Set(secretHeader, secret)
	}
	rec := httptest.NewRecorder()
	env.handler.HandleWebhook(rec, req)
	return rec
}

func updateBody(t *testing.T, updateID int64, chatID int64, text string) []byte {
	t.Helper()
	update := telegram.Update{
		UpdateID: updateID,
		Message: &telegram.Message{
			Chat: telegram.Chat{ID: chatID},
			Text: text,
		},
	}
	body, err := json.Marshal(update)
	require.NoError(t, err)
	return body
}

func TestHandleWebhookMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/telegram/webhook", nil)
	rec := httptest.NewRecorder()
	env.handler.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	assert.JSONEq(t, `{"detail":"method not allowed"}`, rec.Body.String())
}

func TestHandleWebhookRejectsWrongSecret(t *testing.T) {
	env := newTestEnv(t)

	rec := postUpdate(t, env, "wrong-secret", updateBody(t, 1001, testChatID, "Hola"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"invalid signature"}`, rec.Body.String())
	assert.Empty(t, env.sender.sent)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandleWebhookDropsInvalidPayload(t *testing.T) {
	env := newTestEnv(t)

	// Malformed updates are acknowledged with a 200 so Telegram stops
	// redelivering them.
	rec := postUpdate(t, env, "hook-secret", []byte(`{"update_id":"not-a-number"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Empty(t, env.sender.sent)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandleWebhookProcessesUpdate(t *testing.T) {
	env := newTestEnv(t)
	env.expectTouch(testChatID)

	rec := postUpdate(t, env, "hook-secret", updateBody(t, 1001, testChatID, "Hola"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	require.Len(t, env.sender.sent, 1)
	assert.Equal(t, testChatID, env.sender.sent[0].chatID)
	assert.Equal(t, helpText, env.sender.sent[0].text)

	// The update id stays marked so a redelivery is dropped.
	assert.True(t, env.mr.Exists("update:1001"))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandleWebhookDropsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.mr.Set("update:1001", "1")

	rec := postUpdate(t, env, "hook-secret", updateBody(t, 1001, testChatID, "Hola"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Empty(t, env.sender.sent)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandleWebhookEmptyTextIsAcknowledged(t *testing.T) {
	env := newTestEnv(t)

	rec := postUpdate(t, env, "hook-secret", updateBody(t, 1001, testChatID, ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.sender.sent)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandleWebhookProcessingFailureReleasesDedup(t *testing.T) {
	env := newTestEnv(t)
	env.expectTouch(testChatID)
	env.mock.ExpectQuery(`SELECT AVG\(COALESCE\(mttr_hours, labor_hours\)\) FROM work_orders`).
		WithArgs("Cerrada", "2025-03-01", "2025-03-15").
		WillReturnError(errors.New("connection reset"))

	rec := postUpdate(t, env, "hook-secret", updateBody(t, 1002, testChatID, "mttr este mes"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"internal error"}`, rec.Body.String())
	assert.Empty(t, env.sender.sent)

	// The dedup mark is released so the Telegram retry gets processed.
	assert.False(t, env.mr.Exists("update:1002"))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandleWebhookSendFailureReleasesDedup(t *testing.T) {
	env := newTestEnv(t)
	env.sender.err = errors.New("telegram unreachable")
	env.expectTouch(testChatID)

	rec := postUpdate(t, env, "hook-secret", updateBody(t, 1003, testChatID, "Hola"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"internal error"}`, rec.Body.String())
	assert.False(t, env.mr.Exists("update:1003"))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandleWebhookNoSecretConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.handler.secret = ""
	env.expectTouch(testChatID)

	// Without a configured secret the header is not checked at all.
	rec := postUpdate(t, env, "", updateBody(t, 1004, testChatID, "Hola"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.sender.sent, 1)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
