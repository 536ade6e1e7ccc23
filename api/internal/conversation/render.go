package conversation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pedidos-bot/api/internal/catalog"
	"pedidos-bot/api/internal/matcher"
	"pedidos-bot/api/internal/order"
	"pedidos-bot/api/internal/session"
)

const (
	maxClientOptions = 8
	maxStockRows     = 15
	maxListedRows    = 20
	maxMixedRows     = 10
	rule             = "────────────────────────────"
)

// esc makes user or catalog text safe for legacy Markdown.
func esc(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}

func code(s string) string { return "`" + strings.ReplaceAll(s, "`", "'") + "`" }

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func qtyMoney(qty int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func stockIcon(stock decimal.Decimal, qty int) string {
	switch {
	case stock.GreaterThanOrEqual(decimal.NewFromInt(int64(qty))):
		return "✅"
	case stock.IsPositive():
		return "⚠️"
	}
	return "❌"
}

func availIcon(p catalog.Product) string {
	if p.InStock() {
		return "✅"
	}
	return "❌"
}

func welcomePrompt(firstName string) Prompt {
	return md("🛒 *Bot de Ventas*\n\n"+
		"¡Hola "+esc(firstName)+"!\n\n"+
		"Para crear un pedido simplemente escribe el *nombre del cliente*.\n"+
		"Yo buscaré las coincidencias en la base de datos y tú confirmas cuál es.\n\n"+
		"Luego me dices los productos y yo verifico stock y precios antes de crear la orden.",
		row(btn("🛒 Nuevo Pedido", Simple(ActionNewOrder)), btn("📦 Ver Productos", Simple(ActionShowProducts))),
		row(btn("❓ Ayuda", Simple(ActionHelp))),
	)
}

func helpPrompt() Prompt {
	return md("📖 *Comandos Disponibles*\n\n" +
		"🛒 *Crear Pedido (flujo interactivo):*\n" +
		"  Escribe el nombre del cliente y sigue las instrucciones\n" +
		"  /pedido o /p — Iniciar nuevo pedido\n" +
		"  /cancelar — Cancelar pedido en proceso\n\n" +
		"🔍 *Búsqueda:*\n" +
		"  /buscar o /b [texto] — Busca clientes y productos\n" +
		"  /cliente o /c [nombre] — Busca un cliente\n" +
		"  /stock o /s [producto] — Consulta inventario\n" +
		"  /productos — Lista productos con stock\n\n" +
		"📦 *Órdenes:*\n" +
		"  /ordenes o /o — Ver estado de órdenes\n" +
		"  /recargar — Recargar catálogo en memoria\n\n" +
		"💡 *Flujo de pedido:*\n" +
		"  1️⃣ Escribe nombre del cliente\n" +
		"  2️⃣ Confirma el cliente correcto\n" +
		"  3️⃣ Escribe los productos con cantidades\n" +
		"  4️⃣ Verifica stock y precios\n" +
		"  5️⃣ Confirma y crea la orden")
}

func clientsNotFoundPrompt(query string) Prompt {
	return md(fmt.Sprintf("❌ No se encontró ningún cliente con *\"%s\"*\n\nIntenta con otro nombre.", esc(query)),
		row(btn("🔄 Buscar otro nombre", Simple(ActionSearchAgain))))
}

func clientListPrompt(query string, names []string) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 *Clientes encontrados para \"%s\":*\n\n", esc(query))
	kb := make([][]Button, 0, len(names)+1)
	for i, n := range names {
		fmt.Fprintf(&b, "%d. %s\n", i+1, esc(n))
		kb = append(kb, row(btn(n, SelectClient(n))))
	}
	b.WriteString("\n_Selecciona el cliente correcto:_")
	kb = append(kb, row(btn("🔄 Buscar otro", Simple(ActionSearchAgain))))
	return md(b.String(), kb...)
}

func productsInstructionsPrompt(client string) Prompt {
	return md("✅ *Cliente:* " + esc(client) + "\n\n" +
		"📝 Ahora escribe los productos del pedido.\n" +
		"Un producto por línea con la cantidad:\n\n" +
		"```\n10 bolsa 8x12 negra\n5 camiseta blanca\n20 vaso desechable\n```\n\n" +
		"_Escribe /cancelar para cancelar el pedido_")
}

func formatHintPrompt() Prompt {
	return md("⚠️ No pude interpretar los productos.\n\n" +
		"Escribe en formato:\n`10 nombre del producto`\n`5 otro producto`")
}

// linePrompt renders pending line idx of n.
func linePrompt(idx, n int, pl session.PendingLine) Prompt {
	progress := fmt.Sprintf("(%d/%d)", idx+1, n)
	orig := esc(pl.Original)

	switch len(pl.Candidates) {
	case 0:
		return md(fmt.Sprintf("%s ❌ *No encontrado:* \"%s\" (×%d)\n\n", progress, orig, pl.Qty)+
			"No se encontró en el inventario.\n"+
			"Puedes buscar con otro nombre, omitirlo o cancelar.",
			row(btn("🔍 Buscar con otro nombre", LineAction(ActionRetryLine, idx))),
			row(btn("⏭️ Omitir este producto", LineAction(ActionSkipLine, idx))),
			row(btn("❌ Cancelar pedido", Simple(ActionCancel))),
		)

	case 1:
		m := pl.Candidates[0]
		ok := m.Covers(pl.Qty)
		var b strings.Builder
		fmt.Fprintf(&b, "%s 📦 *\"%s\"* (×%d)\n\n", progress, orig, pl.Qty)
		b.WriteString("Producto encontrado:\n")
		fmt.Fprintf(&b, "*%s*\n", esc(m.Description))
		fmt.Fprintf(&b, "Código: %s\n", code(m.Code))
		fmt.Fprintf(&b, "Precio: *%s*\n", money(m.Price))
		icon := "⚠️"
		if ok {
			icon = "✅"
		}
		fmt.Fprintf(&b, "Stock: %s *%s* unidades\n", icon, m.Stock.String())
		switch {
		case !ok && m.InStock():
			fmt.Fprintf(&b, "\n⚠️ _Stock insuficiente (pides %d, hay %s)_", pl.Qty, m.Stock.String())
		case !m.InStock():
			b.WriteString("\n❌ _Sin stock disponible_")
		}
		fmt.Fprintf(&b, "\nSubtotal: *%s*", money(qtyMoney(pl.Qty, m.Price)))

		var kb [][]Button
		switch {
		case ok:
			kb = append(kb, row(btn("✅ Confirmar — "+money(m.Price)+" c/u", ConfirmLine(idx, m.Code))))
		case m.InStock():
			kb = append(kb, row(btn("⚠️ Aceptar (stock limitado)", ConfirmLine(idx, m.Code))))
		}
		kb = append(kb,
			row(btn("⏭️ Omitir", LineAction(ActionSkipLine, idx)), btn("✏️ Cambiar cantidad", LineAction(ActionEditQty, idx))),
			row(btn("🔍 Buscar otro nombre", LineAction(ActionRetryLine, idx))),
		)
		return md(b.String(), kb...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s 📦 *\"%s\"* (×%d)\n\n", progress, orig, pl.Qty)
	fmt.Fprintf(&b, "Se encontraron *%d* coincidencias:\n\n", len(pl.Candidates))
	kb := make([][]Button, 0, len(pl.Candidates)+1)
	for i, m := range pl.Candidates {
		fmt.Fprintf(&b, "%d. %s *%s*\n", i+1, stockIcon(m.Stock, pl.Qty), esc(m.Description))
		fmt.Fprintf(&b, "   %s — Stock: %s — %s\n\n", code(m.Code), m.Stock.String(), money(m.Price))
		kb = append(kb, row(btn(fmt.Sprintf("%d. %s", i+1, cut(m.Description, 30)), PickCandidate(idx, i))))
	}
	b.WriteString("_Selecciona el producto correcto:_")
	kb = append(kb, row(btn("⏭️ Omitir", LineAction(ActionSkipLine, idx)), btn("🔍 Buscar otro", LineAction(ActionRetryLine, idx))))
	return md(b.String(), kb...)
}

func pricingPrompt(p *session.PendingPricing) Prompt {
	price := p.Product.Price
	return md(fmt.Sprintf("💰 *%s* (×%d)\n\n", esc(p.Product.Description), p.Qty)+
		fmt.Sprintf("Precio normal: *%s*\n", money(price))+
		fmt.Sprintf("Subtotal: *%s*\n\n", money(qtyMoney(p.Qty, price)))+
		"_¿Facturar a precio normal o precio especial?_",
		row(btn("💲 Normal — "+money(price), LineAction(ActionNormalPrice, p.Idx))),
		row(btn("✏️ Precio Especial", LineAction(ActionSpecialPrice, p.Idx))),
	)
}

func confirmedNormalPrompt(it order.Item) Prompt {
	return md(fmt.Sprintf("✅ *Confirmado:* %s\n   %d × %s = *%s*",
		esc(it.Description), it.Quantity, money(it.Price), money(it.Subtotal())))
}

func specialPricePrompt(p *session.PendingPricing) Prompt {
	return md(fmt.Sprintf("✏️ *Precio especial para:* %s (×%d)\n", esc(p.Product.Description), p.Qty) +
		fmt.Sprintf("Precio normal: %s\n\n", money(p.Product.Price)) +
		"Escribe el precio especial (solo el número):")
}

func priceDiff(price, normal decimal.Decimal) string {
	d := price.Sub(normal)
	if d.IsNegative() {
		return "-" + money(d.Abs())
	}
	return "+" + money(d)
}

func specialAppliedPrompt(it order.Item) Prompt {
	normal := it.Price
	if it.OriginalPrice != nil {
		normal = *it.OriginalPrice
	}
	return md(fmt.Sprintf("✅ *Precio especial aplicado:* %s\n", esc(it.Description)) +
		fmt.Sprintf("   %d × %s = *%s*\n", it.Quantity, money(it.Price), money(it.Subtotal())) +
		fmt.Sprintf("   _Normal: %s (%s)_", money(normal), priceDiff(it.Price, normal)))
}

func skippedPrompt(pl session.PendingLine) Prompt {
	return md(fmt.Sprintf("⏭️ _Omitido: \"%s\" (×%d)_", esc(pl.Original), pl.Qty))
}

func editQtyPrompt(pl session.PendingLine) Prompt {
	return md(fmt.Sprintf("✏️ *Editar cantidad para:* \"%s\"\nCantidad actual: %d\n\nEscribe la nueva cantidad:", esc(pl.Original), pl.Qty))
}

func retryPrompt(pl session.PendingLine) Prompt {
	return md(fmt.Sprintf("🔍 *Buscando de nuevo:* \"%s\" (×%d)\n\n", esc(pl.Original), pl.Qty) +
		"Escribe otro nombre o descripción para buscar este producto:")
}

func allSkippedPrompt() Prompt {
	return plain("⚠️ No hay productos confirmados en el pedido.\nTodos fueron omitidos.",
		row(btn("📝 Escribir productos de nuevo", Simple(ActionNewOrder))),
		row(btn("❌ Cancelar", Simple(ActionCancel))),
	)
}

func summaryPrompt(client string, items []order.Item) Prompt {
	var b strings.Builder
	b.WriteString("📋 *RESUMEN DEL PEDIDO*\n\n")
	fmt.Fprintf(&b, "👤 *Cliente:* %s\n", esc(client))
	b.WriteString(rule + "\n")
	b.WriteString("📦 *Productos:*\n\n")
	for i, it := range items {
		icon := "⚠️"
		if it.StockOK() {
			icon = "✅"
		}
		fmt.Fprintf(&b, "%d. %s *%s*\n", i+1, icon, esc(it.Description))
		fmt.Fprintf(&b, "   %d × %s = *%s*\n", it.Quantity, money(it.Price), money(it.Subtotal()))
		if it.Special() {
			fmt.Fprintf(&b, "   _💲 Precio especial (normal: %s, %s)_\n", money(*it.OriginalPrice), priceDiff(it.Price, *it.OriginalPrice))
		}
		if !it.StockOK() {
			fmt.Fprintf(&b, "   _⚠️ Stock: %s_\n", it.Stock.String())
		}
		b.WriteString("\n")
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "💰 *TOTAL: %s*\n\n", money(order.Total(items)))
	b.WriteString("_¿Confirmar para crear la orden?_")

	kb := [][]Button{
		row(btn("✅ Confirmar Pedido", Simple(ActionConfirmOrder))),
		row(btn("➕ Agregar más productos", Simple(ActionAddMore))),
	}
	for i, it := range items {
		kb = append(kb, row(btn("🗑️ Quitar: "+cut(it.Description, 22), LineAction(ActionRemoveItem, i))))
	}
	kb = append(kb, row(btn("❌ Cancelar Pedido", Simple(ActionCancel))))
	return md(b.String(), kb...)
}

func addMorePrompt(client string, count int) Prompt {
	return md("➕ *Agregar más productos*\n\n" +
		fmt.Sprintf("Ya tienes *%d* producto(s) confirmados para *%s*.\n", count, esc(client)) +
		"Escribe los nuevos productos con cantidad:\n\n" +
		"```\n10 8x12 negra\n5 t40 blanca\n```\n\n" +
		"_Los nuevos se agregarán a los existentes._")
}

func notePrompt() Prompt {
	return md("📝 *¿Deseas agregar una nota al pedido?*\n\n"+
		"Puedes escribir observaciones, cambios, o cualquier novedad.\n"+
		"Ejemplo: _\"Mandar cambio de $500\"_, _\"Entregar después de las 3pm\"_\n\n"+
		"Escribe la nota o presiona el botón para continuar sin nota:",
		row(btn("⏭️ Sin nota — Crear orden directamente", Simple(ActionNoNote))))
}

func orderCreatedPrompt(rec order.Record, items []order.Item) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 *¡Orden #%d creada exitosamente!*\n\n", rec.ID)
	fmt.Fprintf(&b, "👤 *Cliente:* %s\n", esc(rec.Client))
	b.WriteString("📦 *Productos:*\n")
	for _, it := range items {
		fmt.Fprintf(&b, "  • %d× %s — %s\n", it.Quantity, esc(it.Description), money(it.Subtotal()))
	}
	if rec.Note != "" {
		fmt.Fprintf(&b, "\n📝 *Nota:* %s\n", esc(rec.Note))
	}
	fmt.Fprintf(&b, "\n💰 *Total:* %s\n", money(rec.Total))
	b.WriteString("⏳ *Estado:* Pendiente")
	return md(b.String())
}

func productHitsPrompt(query string, hits []matcher.Match) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *Resultados para \"%s\":*\n\n", esc(query))
	for _, m := range hits {
		fmt.Fprintf(&b, "%s *%s*\n   Stock: %s — %s\n\n", availIcon(m.Product), esc(m.Description), m.Stock.String(), money(m.Price))
	}
	b.WriteString("_Para crear un pedido, escribe el nombre del cliente._")
	return md(b.String())
}

func stockPrompt(query string, rows []catalog.Product) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *Resultados para \"%s\":*\n\n", esc(query))
	for i, p := range rows {
		if i == maxStockRows {
			break
		}
		fmt.Fprintf(&b, "%s *%s*\n   %s | Stock: %s | %s\n\n", availIcon(p), esc(p.Description), code(p.Code), p.Stock.String(), money(p.Price))
	}
	if len(rows) > maxStockRows {
		fmt.Fprintf(&b, "_...y %d más_", len(rows)-maxStockRows)
	}
	return md(b.String())
}

func inStockPrompt(rows []catalog.Product) Prompt {
	var b strings.Builder
	b.WriteString("📦 *Productos con Stock:*\n\n")
	for _, p := range rows {
		fmt.Fprintf(&b, "• *%s*\n  %s — Stock: %s — %s\n", esc(p.Description), code(p.Code), p.Stock.String(), money(p.Price))
	}
	return md(b.String())
}

func mixedSearchPrompt(query string, clients []catalog.Client, products []catalog.Product) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 *Resultados para \"%s\":*\n\n", esc(query))
	if len(clients) > 0 {
		b.WriteString("👥 *Clientes:*\n")
		for i, c := range clients {
			if i == maxMixedRows {
				break
			}
			fmt.Fprintf(&b, "  • %s\n", esc(c.Name))
		}
		b.WriteString("\n")
	}
	if len(products) > 0 {
		b.WriteString("📦 *Productos:*\n")
		for i, p := range products {
			if i == maxMixedRows {
				break
			}
			fmt.Fprintf(&b, "  %s %s (%s) — %s\n", availIcon(p), esc(p.Description), p.Stock.String(), money(p.Price))
		}
	}
	if len(clients) == 0 && len(products) == 0 {
		b.WriteString("❌ Sin resultados")
	}
	return md(b.String())
}

var statusIcons = map[string]string{
	"pendiente":  "⏳",
	"aprobado":   "✅",
	"empacado":   "📦",
	"despachado": "🚚",
	"cancelado":  "❌",
}

func statusPrompt(counts []order.StatusCount) Prompt {
	var b strings.Builder
	b.WriteString("📋 *Estado de Órdenes:*\n\n")
	for _, c := range counts {
		icon, ok := statusIcons[c.Status]
		if !ok {
			icon = "•"
		}
		fmt.Fprintf(&b, "%s *%s:* %d\n", icon, esc(c.Status), c.Count)
	}
	if len(counts) == 0 {
		b.WriteString("_No hay órdenes registradas_")
	}
	return md(b.String())
}
