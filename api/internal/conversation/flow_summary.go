package conversation

import (
	"context"

	"go.uber.org/zap"

	"pedidos-bot/api/internal/order"
	"pedidos-bot/api/internal/session"
)

func (e *Engine) showSummary(ctx context.Context, u User, r Responder, s *session.Session) {
	if len(s.Confirmed) == 0 {
		e.send(ctx, r, allSkippedPrompt())
		return
	}
	s.Step = session.StepConfirmPrices
	e.sessions.Set(u.ID, s)
	e.send(ctx, r, summaryPrompt(s.Client, s.Confirmed))
}

func (e *Engine) addMore(ctx context.Context, u User, r Responder, s *session.Session) {
	s.Step = session.StepAddProducts
	e.sessions.Set(u.ID, s)

	e.notice(ctx, r, "")
	e.send(ctx, r, addMorePrompt(s.Client, len(s.Confirmed)))
}

func (e *Engine) removeItem(ctx context.Context, u User, r Responder, s *session.Session, idx int) {
	if idx < 0 || idx >= len(s.Confirmed) {
		e.notice(ctx, r, "Producto no válido")
		return
	}
	removed := s.Confirmed[idx]
	s.Confirmed = append(s.Confirmed[:idx:idx], s.Confirmed[idx+1:]...)
	e.sessions.Set(u.ID, s)

	e.notice(ctx, r, "Eliminado: "+removed.Description)
	e.showSummary(ctx, u, r, s)
}

func (e *Engine) askNote(ctx context.Context, u User, r Responder, s *session.Session) {
	s.Step = session.StepAwaitNote
	e.sessions.Set(u.ID, s)

	e.notice(ctx, r, "")
	e.send(ctx, r, notePrompt())
}

// finalize commits the order. On failure the session stays at the note step
// so the user can try again or cancel.
func (e *Engine) finalize(ctx context.Context, u User, r Responder, s *session.Session, note string, viaAction bool) {
	draft := order.Draft{
		UserID:   u.ID,
		Username: u.Username,
		UserName: u.FullName(),
		Client:   s.Client,
		RawInput: s.RawInput,
		Items:    s.Confirmed,
		Note:     note,
	}
	rec, err := e.orders.Finalize(ctx, draft)
	if err != nil {
		e.log.Error("order finalize failed", zap.Int64("user_id", u.ID), zap.String("client", s.Client), zap.Error(err))
		if s.Step != session.StepAwaitNote {
			s.Step = session.StepAwaitNote
			e.sessions.Set(u.ID, s)
		}
		e.notice(ctx, r, "⚠️ Error")
		e.send(ctx, r, plain("⚠️ No se pudo crear la orden. Intenta de nuevo o escribe /cancelar."))
		return
	}
	e.sessions.Clear(u.ID)

	msg := orderCreatedPrompt(rec, s.Confirmed)
	if viaAction {
		e.notice(ctx, r, "✅ Orden #"+itoa(rec.ID)+" creada")
		e.edit(ctx, r, msg)
		return
	}
	e.send(ctx, r, msg)
}
