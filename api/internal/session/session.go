package session

import (
	"time"

	"pedidos-bot/api/internal/matcher"
	"pedidos-bot/api/internal/order"
)

// Step is the position of a user inside the order flow.
type Step string

const (
	StepAwaitClient   Step = "esperando_cliente"
	StepPickClient    Step = "seleccionando_cliente"
	StepAwaitProducts Step = "esperando_productos"
	StepVerifyStock   Step = "verificando_stock"
	StepAwaitQty      Step = "esperando_cantidad"
	StepRetryProduct  Step = "reintentando_producto"
	StepAddProducts   Step = "agregando_productos"
	StepSpecialPrice  Step = "esperando_precio_especial"
	StepConfirmPrices Step = "confirmar_precios"
	StepAwaitNote     Step = "esperando_nota"
)

// PendingLine is a parsed product line waiting for the user's decision.
type PendingLine struct {
	Original   string          `json:"original"`
	Qty        int             `json:"cantidad"`
	Candidates []matcher.Match `json:"candidatos"`
}

// PendingPricing is the product chosen for a line before its price is settled.
type PendingPricing struct {
	Idx     int           `json:"idx"`
	Product matcher.Match `json:"producto"`
	Qty     int           `json:"cantidad"`
}

// Session is the per-user conversation state.
type Session struct {
	Step          Step
	Client        string
	ClientQuery   string
	ClientOptions []string

	Pending   []PendingLine
	Confirmed []order.Item
	Index     int
	Pricing   *PendingPricing

	EditIdx  int
	RetryIdx int
	RawInput string

	LastTouched time.Time
}

// Current returns the line under the cursor, or false once every line was handled.
func (s *Session) Current() (PendingLine, bool) {
	if s.Index < 0 || s.Index >= len(s.Pending) {
		return PendingLine{}, false
	}
	return s.Pending[s.Index], true
}

// Done reports whether the cursor went past the last pending line.
func (s *Session) Done() bool { return s.Index >= len(s.Pending) }

// AppendRaw records text typed during product entry.
func (s *Session) AppendRaw(text string) {
	if s.RawInput == "" {
		s.RawInput = text
		return
	}
	s.RawInput += "\n" + text
}

// Clone returns a deep copy, so callers can mutate it and commit with Store.Set.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.ClientOptions = append([]string(nil), s.ClientOptions...)
	c.Confirmed = append([]order.Item(nil), s.Confirmed...)
	if s.Pending != nil {
		c.Pending = make([]PendingLine, len(s.Pending))
		for i, pl := range s.Pending {
			pl.Candidates = append([]matcher.Match(nil), pl.Candidates...)
			c.Pending[i] = pl
		}
	}
	if s.Pricing != nil {
		p := *s.Pricing
		c.Pricing = &p
	}
	return &c
}
