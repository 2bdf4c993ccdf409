package logger

import "regexp"

// Secrets that can leak through user-supplied text or URLs. Telegram bot
// tokens travel inside the API path, JWT-like triples show up in pasted
// payloads.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(bot\d+:|AAG|AAH)[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`[A-Za-z0-9]{24,}\.[A-Za-z0-9_-]{6,}\.[A-Za-z0-9_-]{27,}`),
}

// Redact masks anything token-shaped before it reaches a log line or an
// audit document.
func Redact(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllString(s, "***")
	}
	return s
}
