package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pedidos-bot/api/internal/conversation"
)

// Sender is the subset of *tgbotapi.BotAPI the transport needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// responder answers one update. It is used by a single job at a time.
type responder struct {
	bot        Sender
	chatID     int64
	messageID  int
	callbackID string
	answered   bool
}

func (r *responder) Send(_ context.Context, p conversation.Prompt) error {
	msg := tgbotapi.NewMessage(r.chatID, clip(p.Text))
	msg.ParseMode = parseMode(p)
	if kb := keyboard(p.Keyboard); kb != nil {
		msg.ReplyMarkup = *kb
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *responder) Edit(ctx context.Context, p conversation.Prompt) error {
	if r.messageID == 0 {
		return r.Send(ctx, p)
	}
	var edit tgbotapi.EditMessageTextConfig
	if kb := keyboard(p.Keyboard); kb != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(r.chatID, r.messageID, clip(p.Text), *kb)
	} else {
		edit = tgbotapi.NewEditMessageText(r.chatID, r.messageID, clip(p.Text))
	}
	edit.ParseMode = parseMode(p)
	_, err := r.bot.Send(edit)
	return err
}

func (r *responder) Notice(_ context.Context, text string) error {
	if r.callbackID == "" || r.answered {
		return nil
	}
	r.answered = true
	_, err := r.bot.Request(tgbotapi.NewCallback(r.callbackID, text))
	return err
}

// ack answers the callback if the handler did not.
func (r *responder) ack(ctx context.Context) error {
	return r.Notice(ctx, "")
}
