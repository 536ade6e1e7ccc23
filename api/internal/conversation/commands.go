package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pedidos-bot/api/internal/catalog"
	"pedidos-bot/api/internal/session"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

// HandleCommand runs a slash command; cmd comes without the slash and bot suffix.
func (e *Engine) HandleCommand(ctx context.Context, u User, r Responder, cmd, args string) {
	args = strings.TrimSpace(args)
	switch strings.ToLower(cmd) {
	case "start":
		e.sessions.Clear(u.ID)
		e.send(ctx, r, welcomePrompt(u.FirstName))
	case "ayuda", "help":
		e.send(ctx, r, helpPrompt())
	case "cancelar":
		if _, ok := e.sessions.Get(u.ID); ok {
			e.sessions.Clear(u.ID)
			e.send(ctx, r, plain("❌ Pedido cancelado."))
			return
		}
		e.send(ctx, r, plain("ℹ️ No hay ningún pedido en proceso."))
	case "pedido", "p":
		e.sessions.Create(u.ID, session.StepAwaitClient)
		e.send(ctx, r, md("👤 *Nuevo Pedido*\n\nEscribe el nombre del cliente para buscarlo en la base de datos:"))
	case "stock", "s":
		e.stockLookup(ctx, r, args)
	case "cliente", "c":
		if args == "" {
			e.send(ctx, r, md("Uso: `/cliente nombre`"))
			return
		}
		e.searchClients(ctx, u, r, args, false)
	case "productos":
		e.listInStock(ctx, r)
	case "buscar", "b":
		e.searchAll(ctx, r, args)
	case "ordenes", "o":
		e.orderStatus(ctx, r)
	case "recargar":
		e.reloadCatalog(ctx, r)
	default:
		e.send(ctx, r, plain("Comando no reconocido. Usa /ayuda."))
	}
}

func (e *Engine) stockLookup(ctx context.Context, r Responder, text string) {
	if text == "" {
		e.send(ctx, r, md("Uso: `/stock nombre_producto`"))
		return
	}
	rows, err := e.source.SearchProducts(ctx, text)
	if err != nil {
		e.log.Warn("stock lookup failed", zap.String("text", text), zap.Error(err))
		e.send(ctx, r, plain("⚠️ Error: no se pudo consultar el inventario."))
		return
	}
	if len(rows) == 0 {
		e.send(ctx, r, plain(fmt.Sprintf("❌ No se encontraron productos con \"%s\"", text)))
		return
	}
	e.send(ctx, r, stockPrompt(text, rows))
}

// listInStock shows in-stock products from the cache, or from the source when the cache is empty.
func (e *Engine) listInStock(ctx context.Context, r Responder) {
	var rows []catalog.Product
	if e.catalog != nil {
		rows = e.catalog.InStock()
	}
	if len(rows) == 0 && e.source != nil {
		all, err := e.source.ListAllProducts(ctx)
		if err != nil {
			e.log.Warn("product listing failed", zap.Error(err))
			e.send(ctx, r, plain("⚠️ Error: no se pudo consultar el inventario."))
			return
		}
		for _, p := range all {
			if p.InStock() {
				rows = append(rows, p)
			}
		}
	}
	if len(rows) == 0 {
		e.send(ctx, r, plain("📦 No hay productos con stock"))
		return
	}
	if len(rows) > maxListedRows {
		rows = rows[:maxListedRows]
	}
	e.send(ctx, r, inStockPrompt(rows))
}

func (e *Engine) searchAll(ctx context.Context, r Responder, text string) {
	if text == "" {
		e.send(ctx, r, md("Uso: `/buscar texto`"))
		return
	}
	clients, err := e.clients.SearchClients(ctx, text)
	if err != nil {
		e.log.Warn("combined search: clients failed", zap.Error(err))
		e.send(ctx, r, plain("⚠️ Error: no se pudo completar la búsqueda."))
		return
	}
	products, err := e.source.SearchProducts(ctx, text)
	if err != nil {
		e.log.Warn("combined search: products failed", zap.Error(err))
		e.send(ctx, r, plain("⚠️ Error: no se pudo completar la búsqueda."))
		return
	}
	e.send(ctx, r, mixedSearchPrompt(text, clients, products))
}

func (e *Engine) orderStatus(ctx context.Context, r Responder) {
	if e.stats == nil {
		e.send(ctx, r, md("_No hay órdenes registradas_"))
		return
	}
	counts, err := e.stats.CountByStatus(ctx)
	if err != nil {
		e.log.Warn("order status failed", zap.Error(err))
		e.send(ctx, r, plain("⚠️ Error: no se pudo consultar las órdenes."))
		return
	}
	e.send(ctx, r, statusPrompt(counts))
}

func (e *Engine) reloadCatalog(ctx context.Context, r Responder) {
	if e.catalog == nil {
		e.send(ctx, r, plain("ℹ️ No hay catálogo en memoria."))
		return
	}
	if err := e.catalog.Reload(ctx); err != nil {
		e.send(ctx, r, plain("⚠️ No se pudo recargar el catálogo; se mantiene el anterior."))
		return
	}
	all := e.catalog.All()
	e.send(ctx, r, plain(fmt.Sprintf("✅ Catálogo recargado: %d productos (%d con stock) a las %s.",
		len(all), len(e.catalog.InStock()), e.catalog.LoadedAt().Format("15:04:05"))))
}
