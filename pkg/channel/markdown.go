package channel

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// EscapeMarkdown escapes user-supplied text (names, usernames) for a
// Message. Escaped text must stay outside bold or link entities.
func EscapeMarkdown(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
