package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pedidos-bot/api/internal/order"
	"pedidos-bot/api/internal/session"
)

var priceCleaner = strings.NewReplacer(",", "", "$", "")

func (e *Engine) receiveProducts(ctx context.Context, u User, r Responder, s *session.Session, text string) {
	lines := ParseLines(text)
	if len(lines) == 0 {
		e.send(ctx, r, formatHintPrompt())
		return
	}

	e.send(ctx, r, plain(fmt.Sprintf("🔍 Verificando %d producto(s) en inventario...", len(lines))))

	pending := make([]session.PendingLine, len(lines))
	for i, l := range lines {
		pending[i] = session.PendingLine{
			Original:   l.Desc,
			Qty:        l.Qty,
			Candidates: e.products.Search(ctx, l.Desc),
		}
	}

	s.Step = session.StepVerifyStock
	s.Pending = pending
	s.Index = 0
	s.Pricing = nil
	s.AppendRaw(text)
	e.sessions.Set(u.ID, s)

	e.log.Debug("products received", zap.Int64("user_id", u.ID), zap.Int("lines", len(lines)))
	e.showCurrent(ctx, u, r, s)
}

// showCurrent renders the line under the cursor, or the summary once every line is handled.
func (e *Engine) showCurrent(ctx context.Context, u User, r Responder, s *session.Session) {
	if s.Done() {
		e.showSummary(ctx, u, r, s)
		return
	}
	pl, _ := s.Current()
	e.send(ctx, r, linePrompt(s.Index, len(s.Pending), pl))
}

// pendingLine returns the line under the cursor. Buttons of lines already
// handled stay visible in the chat, so any other index is rejected.
func (e *Engine) pendingLine(ctx context.Context, r Responder, s *session.Session, idx int) (session.PendingLine, bool) {
	if idx < 0 || idx >= len(s.Pending) || idx != s.Index {
		e.notice(ctx, r, "Producto no válido")
		return session.PendingLine{}, false
	}
	return s.Pending[idx], true
}

func (e *Engine) chooseCandidate(ctx context.Context, u User, r Responder, s *session.Session, a Action) {
	pl, ok := e.pendingLine(ctx, r, s, a.Line)
	if !ok {
		return
	}
	if len(pl.Candidates) == 0 {
		e.notice(ctx, r, "Producto no válido")
		return
	}

	var pick int
	switch a.Kind {
	case ActionPickCandidate:
		if a.Choice >= len(pl.Candidates) {
			e.notice(ctx, r, "Producto no válido")
			return
		}
		pick = a.Choice
	default:
		pick = candidateByCode(pl, a.Code)
	}
	m := pl.Candidates[pick]

	s.Pricing = &session.PendingPricing{Idx: a.Line, Product: m, Qty: pl.Qty}
	e.sessions.Set(u.ID, s)

	e.notice(ctx, r, "✅ "+cut(m.Description, 40))
	e.send(ctx, r, pricingPrompt(s.Pricing))
}

// candidateByCode finds code among the candidates, accepting a truncated
// code as a prefix. Unknown codes fall back to the first candidate.
func candidateByCode(pl session.PendingLine, code string) int {
	for i, m := range pl.Candidates {
		if m.Code == code {
			return i
		}
	}
	if code != "" {
		for i, m := range pl.Candidates {
			if strings.HasPrefix(m.Code, code) {
				return i
			}
		}
	}
	return 0
}

func (e *Engine) pricingFor(ctx context.Context, r Responder, s *session.Session, line int) (*session.PendingPricing, bool) {
	if s.Pricing == nil || s.Pricing.Idx != line {
		e.notice(ctx, r, "Producto no válido")
		return nil, false
	}
	return s.Pricing, true
}

func itemFrom(p *session.PendingPricing) order.Item {
	return order.Item{
		Code:        p.Product.Code,
		Description: p.Product.Description,
		Quantity:    p.Qty,
		Price:       p.Product.Price,
		Stock:       p.Product.Stock,
	}
}

func (e *Engine) normalPrice(ctx context.Context, u User, r Responder, s *session.Session, line int) {
	p, ok := e.pricingFor(ctx, r, s, line)
	if !ok {
		return
	}
	it := itemFrom(p)
	s.Confirmed = append(s.Confirmed, it)
	s.Index = max(s.Index, p.Idx+1)
	s.Pricing = nil
	s.Step = session.StepVerifyStock
	e.sessions.Set(u.ID, s)

	e.notice(ctx, r, "✅ Precio normal")
	e.edit(ctx, r, confirmedNormalPrompt(it))
	e.showCurrent(ctx, u, r, s)
}

func (e *Engine) requestSpecialPrice(ctx context.Context, u User, r Responder, s *session.Session, line int) {
	p, ok := e.pricingFor(ctx, r, s, line)
	if !ok {
		return
	}
	s.Step = session.StepSpecialPrice
	e.sessions.Set(u.ID, s)

	e.notice(ctx, r, "")
	e.send(ctx, r, specialPricePrompt(p))
}

// parsePrice reads a positive price, ignoring thousands commas and dollar signs.
func parsePrice(text string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(priceCleaner.Replace(text)))
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d, true
}

func (e *Engine) receiveSpecialPrice(ctx context.Context, u User, r Responder, s *session.Session, text string) {
	if s.Pricing == nil {
		s.Step = session.StepVerifyStock
		e.sessions.Set(u.ID, s)
		e.showCurrent(ctx, u, r, s)
		return
	}
	price, ok := parsePrice(text)
	if !ok {
		e.send(ctx, r, md("⚠️ Escribe un precio válido (ejemplo: `85.50`)"))
		return
	}

	p := s.Pricing
	normal := p.Product.Price
	it := itemFrom(p)
	it.Price = price
	it.OriginalPrice = &normal

	s.Confirmed = append(s.Confirmed, it)
	s.Index = max(s.Index, p.Idx+1)
	s.Pricing = nil
	s.Step = session.StepVerifyStock
	e.sessions.Set(u.ID, s)

	e.send(ctx, r, specialAppliedPrompt(it))
	e.showCurrent(ctx, u, r, s)
}

func (e *Engine) skipLine(ctx context.Context, u User, r Responder, s *session.Session, line int) {
	pl, ok := e.pendingLine(ctx, r, s, line)
	if !ok {
		return
	}
	s.Index = max(s.Index, line+1)
	if s.Pricing != nil && s.Pricing.Idx == line {
		s.Pricing = nil
	}
	s.Step = session.StepVerifyStock
	e.sessions.Set(u.ID, s)

	e.notice(ctx, r, "Producto omitido")
	e.edit(ctx, r, skippedPrompt(pl))
	e.showCurrent(ctx, u, r, s)
}

func (e *Engine) editQty(ctx context.Context, u User, r Responder, s *session.Session, line int) {
	pl, ok := e.pendingLine(ctx, r, s, line)
	if !ok {
		return
	}
	s.Step = session.StepAwaitQty
	s.EditIdx = line
	e.sessions.Set(u.ID, s)

	e.notice(ctx, r, "")
	e.send(ctx, r, editQtyPrompt(pl))
}

func (e *Engine) receiveQty(ctx context.Context, u User, r Responder, s *session.Session, text string) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		e.send(ctx, r, plain("⚠️ Escribe un número válido (mínimo 1):"))
		return
	}
	s.Step = session.StepVerifyStock
	if s.EditIdx >= 0 && s.EditIdx < len(s.Pending) {
		s.Pending[s.EditIdx].Qty = n
	}
	e.sessions.Set(u.ID, s)

	e.send(ctx, r, md(fmt.Sprintf("✅ Cantidad actualizada a *%d*", n)))
	e.showCurrent(ctx, u, r, s)
}

func (e *Engine) retryLine(ctx context.Context, u User, r Responder, s *session.Session, line int) {
	pl, ok := e.pendingLine(ctx, r, s, line)
	if !ok {
		return
	}
	s.Step = session.StepRetryProduct
	s.RetryIdx = line
	e.sessions.Set(u.ID, s)

	e.notice(ctx, r, "")
	e.send(ctx, r, retryPrompt(pl))
}

func (e *Engine) retrySearch(ctx context.Context, u User, r Responder, s *session.Session, text string) {
	s.Step = session.StepVerifyStock
	if s.RetryIdx >= 0 && s.RetryIdx < len(s.Pending) {
		s.Pending[s.RetryIdx].Candidates = e.products.Search(ctx, text)
		s.Pending[s.RetryIdx].Original = text
	}
	e.sessions.Set(u.ID, s)
	e.showCurrent(ctx, u, r, s)
}
