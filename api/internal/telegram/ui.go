package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pedidos-bot/api/internal/conversation"
)

// maxMessageLen stays under Telegram's 4096 limit with room for the ellipsis.
const maxMessageLen = 4000

// keyboard converts prompt buttons to an inline keyboard; nil when there are none.
func keyboard(rows [][]conversation.Button) *tgbotapi.InlineKeyboardMarkup {
	var out [][]tgbotapi.InlineKeyboardButton
	for _, r := range rows {
		if len(r) == 0 {
			continue
		}
		line := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			line = append(line, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action.Encode()))
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(out...)
	return &kb
}

func clip(text string) string {
	r := []rune(text)
	if len(r) <= maxMessageLen {
		return text
	}
	return string(r[:maxMessageLen]) + "…"
}

func parseMode(p conversation.Prompt) string {
	if p.Markdown {
		return tgbotapi.ModeMarkdown
	}
	return ""
}

func userFrom(u *tgbotapi.User) conversation.User {
	if u == nil {
		return conversation.User{}
	}
	return conversation.User{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
