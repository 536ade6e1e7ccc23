package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pedidos-bot/api/internal/conversation"
)

// jobTimeout bounds one handler run, including database work.
const jobTimeout = 60 * time.Second

// Handler is the conversation side of the router.
type Handler interface {
	HandleText(ctx context.Context, u conversation.User, r conversation.Responder, text string)
	HandleAction(ctx context.Context, u conversation.User, r conversation.Responder, a conversation.Action)
	HandleCommand(ctx context.Context, u conversation.User, r conversation.Responder, cmd, args string)
}

// Queue serializes jobs per user.
type Queue interface {
	Submit(userID int64, job func()) error
}

type Router struct {
	Bot     Sender
	Handler Handler
	Queue   Queue
	Log     *zap.Logger
}

func (r *Router) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// HandleUpdate routes one Telegram update. Work is queued per user so a
// user's updates are handled in arrival order.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		r.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		r.handleMessage(ctx, upd.Message)
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	u := userFrom(msg.From)
	resp := &responder{bot: r.Bot, chatID: msg.Chat.ID}

	switch {
	case msg.IsCommand():
		cmd, args := msg.Command(), msg.CommandArguments()
		r.submit(ctx, u.ID, "command", func(ctx context.Context) {
			r.Handler.HandleCommand(ctx, u, resp, cmd, args)
		})
	case msg.Text != "":
		text := msg.Text
		r.submit(ctx, u.ID, "text", func(ctx context.Context) {
			r.Handler.HandleText(ctx, u, resp, text)
		})
	}
}

func (r *Router) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.From == nil {
		return
	}
	u := userFrom(cb.From)
	resp := &responder{bot: r.Bot, chatID: cb.From.ID, callbackID: cb.ID}
	if cb.Message != nil {
		resp.messageID = cb.Message.MessageID
		if cb.Message.Chat != nil {
			resp.chatID = cb.Message.Chat.ID
		}
	}
	a := conversation.DecodeAction(cb.Data)

	r.submit(ctx, u.ID, "callback", func(ctx context.Context) {
		r.Handler.HandleAction(ctx, u, resp, a)
		if err := resp.ack(ctx); err != nil {
			r.logger().Warn("callback ack failed", zap.Int64("user_id", u.ID), zap.Error(err))
		}
	})
}

func (r *Router) submit(ctx context.Context, userID int64, kind string, fn func(ctx context.Context)) {
	log := r.logger()
	job := func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("handler panic",
					zap.String("kind", kind),
					zap.Int64("user_id", userID),
					zap.String("panic", fmt.Sprint(rec)),
					zap.ByteString("stack", debug.Stack()))
			}
		}()
		jctx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()
		fn(jctx)
	}
	if err := r.Queue.Submit(userID, job); err != nil {
		log.Warn("update dropped", zap.String("kind", kind), zap.Int64("user_id", userID), zap.Error(err))
	}
}
