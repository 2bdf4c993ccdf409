// Package telegram implements the thin Bot API surface the service
// needs: validating incoming webhook updates and sending text replies.
package telegram

// Update is the subset of the Bot API update payload the bot consumes.
// Everything else Telegram sends is ignored.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message carries the chat reference and the raw text.
type Message struct {
	Chat Chat   `json:"chat"`
	Text string `json:"text,omitempty"`
}

// Chat identifies the conversation the update belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// ChatID returns the chat the update belongs to, or 0 for updates
// without a message.
func (u *Update) ChatID() int64 {
	if u.Message == nil {
		return 0
	}
	return u.Message.Chat.ID
}

// Text returns the message text, or "" for updates without one.
func (u *Update) Text() string {
	if u.Message == nil {
		return ""
	}
	return u.Message.Text
}
