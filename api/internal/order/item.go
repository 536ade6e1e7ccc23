package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Item is one confirmed order line.
type Item struct {
	Code          string           `json:"codigo"`
	Description   string           `json:"descripcion"`
	Quantity      int              `json:"cantidad"`
	Price         decimal.Decimal  `json:"precio"`
	OriginalPrice *decimal.Decimal `json:"precioOriginal,omitempty"`
	Stock         decimal.Decimal  `json:"stock"`
}

// Subtotal is quantity × price.
func (it Item) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Special reports whether the line was priced away from the catalog price.
func (it Item) Special() bool {
	return it.OriginalPrice != nil && !it.OriginalPrice.Equal(it.Price)
}

// StockOK reports whether the recorded stock covers the quantity.
func (it Item) StockOK() bool {
	return it.Stock.GreaterThanOrEqual(decimal.NewFromInt(int64(it.Quantity)))
}

// Total sums the subtotals of items.
func Total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// ProductLines renders the human list stored with the order: one "qty description" per line.
func ProductLines(items []Item) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%d %s", it.Quantity, it.Description)
	}
	return strings.Join(lines, "\n")
}
