package conversation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"pedidos-bot/api/internal/catalog"
	"pedidos-bot/api/internal/matcher"
	"pedidos-bot/api/internal/order"
	"pedidos-bot/api/internal/session"
)

// ProductSearcher resolves one free-text product line into candidates.
type ProductSearcher interface {
	Search(ctx context.Context, text string) []matcher.Match
}

// CatalogCache is the in-memory catalog snapshot.
type CatalogCache interface {
	InStock() []catalog.Product
	Reload(ctx context.Context) error
	All() []catalog.Product
	LoadedAt() time.Time
}

// Finalizer commits a confirmed order.
type Finalizer interface {
	Finalize(ctx context.Context, d order.Draft) (order.Record, error)
}

// OrderStats reports how many orders sit in each status.
type OrderStats interface {
	CountByStatus(ctx context.Context) ([]order.StatusCount, error)
}

// Deps are the collaborators of an Engine. Stats and Catalog are optional.
type Deps struct {
	Sessions *session.Store
	Products ProductSearcher
	Catalog  CatalogCache
	Source   catalog.ProductSource
	Clients  catalog.ClientSource
	Orders   Finalizer
	Stats    OrderStats
	Log      *zap.Logger
}

// Engine is the order-building state machine. It must be driven through a
// Dispatcher so events of one user never run concurrently.
type Engine struct {
	sessions *session.Store
	products ProductSearcher
	catalog  CatalogCache
	source   catalog.ProductSource
	clients  catalog.ClientSource
	orders   Finalizer
	stats    OrderStats
	log      *zap.Logger
}

func NewEngine(d Deps) *Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		sessions: d.Sessions,
		products: d.Products,
		catalog:  d.Catalog,
		source:   d.Source,
		clients:  d.Clients,
		orders:   d.Orders,
		stats:    d.Stats,
		log:      log,
	}
}

// HandleText routes a free-text message according to the user's step.
func (e *Engine) HandleText(ctx context.Context, u User, r Responder, text string) {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}

	s, ok := e.sessions.Get(u.ID)
	if !ok {
		e.autoDetect(ctx, u, r, text)
		return
	}

	switch s.Step {
	case session.StepAwaitClient:
		e.searchClients(ctx, u, r, text, true)
	case session.StepAwaitProducts, session.StepAddProducts:
		e.receiveProducts(ctx, u, r, s, text)
	case session.StepAwaitQty:
		e.receiveQty(ctx, u, r, s, text)
	case session.StepSpecialPrice:
		e.receiveSpecialPrice(ctx, u, r, s, text)
	case session.StepAwaitNote:
		e.finalize(ctx, u, r, s, text, false)
	case session.StepRetryProduct:
		e.retrySearch(ctx, u, r, s, text)
	default:
		e.searchClients(ctx, u, r, text, true)
	}
}

// HandleAction applies a decoded button press.
func (e *Engine) HandleAction(ctx context.Context, u User, r Responder, a Action) {
	switch a.Kind {
	case ActionNewOrder:
		e.notice(ctx, r, "")
		e.sessions.Create(u.ID, session.StepAwaitClient)
		e.send(ctx, r, md("👤 Escribe el *nombre del cliente* para buscarlo:"))
		return
	case ActionShowProducts:
		e.notice(ctx, r, "")
		e.listInStock(ctx, r)
		return
	case ActionHelp:
		e.notice(ctx, r, "")
		e.send(ctx, r, helpPrompt())
		return
	case ActionSelectClient:
		e.selectClient(ctx, u, r, a.Client)
		return
	case ActionSearchAgain:
		e.notice(ctx, r, "")
		e.sessions.Create(u.ID, session.StepAwaitClient)
		e.send(ctx, r, plain("👤 Escribe otro nombre para buscar:"))
		return
	case ActionCancel:
		e.sessions.Clear(u.ID)
		e.notice(ctx, r, "Pedido cancelado")
		e.edit(ctx, r, plain("❌ Pedido cancelado."))
		return
	case ActionUnknown:
		e.notice(ctx, r, "Acción no reconocida")
		return
	}

	s, ok := e.sessions.Get(u.ID)
	if !ok {
		e.notice(ctx, r, "Sesión expirada")
		return
	}

	switch a.Kind {
	case ActionConfirmLine, ActionPickCandidate:
		e.chooseCandidate(ctx, u, r, s, a)
	case ActionNormalPrice:
		e.normalPrice(ctx, u, r, s, a.Line)
	case ActionSpecialPrice:
		e.requestSpecialPrice(ctx, u, r, s, a.Line)
	case ActionSkipLine:
		e.skipLine(ctx, u, r, s, a.Line)
	case ActionEditQty:
		e.editQty(ctx, u, r, s, a.Line)
	case ActionRetryLine:
		e.retryLine(ctx, u, r, s, a.Line)
	case ActionRemoveItem:
		e.removeItem(ctx, u, r, s, a.Line)
	case ActionAddMore:
		e.addMore(ctx, u, r, s)
	case ActionConfirmOrder:
		e.askNote(ctx, u, r, s)
	case ActionNoNote:
		e.finalize(ctx, u, r, s, "", true)
	default:
		e.notice(ctx, r, "Acción no reconocida")
	}
}

func (e *Engine) send(ctx context.Context, r Responder, p Prompt) {
	if err := r.Send(ctx, p); err != nil {
		e.log.Warn("send failed", zap.Error(err))
	}
}

func (e *Engine) edit(ctx context.Context, r Responder, p Prompt) {
	if err := r.Edit(ctx, p); err != nil {
		e.log.Warn("edit failed", zap.Error(err))
	}
}

func (e *Engine) notice(ctx context.Context, r Responder, text string) {
	if err := r.Notice(ctx, text); err != nil {
		e.log.Debug("notice failed", zap.Error(err))
	}
}
