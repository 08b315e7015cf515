package compile

import (
	"strings"

	"github.com/strrl/agent-share/internal/entry"
)

// DefaultTitle is used when a session has no user message to derive a
// title from.
const DefaultTitle = "Agent session"

const maxTitleLen = 30

// FallbackTitle derives a title from the first line of the first user
// prompt. It never fails; callers doing LLM-based titling revert to this on
// any error.
func FallbackTitle(entries []entry.Entry) string {
	for _, e := range entries {
		if e.Kind != entry.KindMessage || e.Message.Role != entry.RoleUser {
			continue
		}
		text := e.Message.PlainText()
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return DefaultTitle
		}
		if runes := []rune(text); len(runes) > maxTitleLen {
			text = string(runes[:maxTitleLen])
		}
		return text
	}
	return DefaultTitle
}
