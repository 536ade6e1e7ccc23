package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a read-only projection of a catalog row.
type Product struct {
	Code        string          `json:"codigo"`
	Description string          `json:"descripcion"`
	Stock       decimal.Decimal `json:"stock"`
	Price       decimal.Decimal `json:"precio"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool { return p.Stock.IsPositive() }

// Covers reports whether stock is enough for qty units.
func (p Product) Covers(qty int) bool {
	return p.Stock.GreaterThanOrEqual(decimal.NewFromInt(int64(qty)))
}

type Client struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Phone string `json:"telefono"`
}

// ProductSource is the catalog query collaborator.
type ProductSource interface {
	// SearchProducts returns rows whose description contains text (case-insensitive).
	SearchProducts(ctx context.Context, text string) ([]Product, error)
	ListAllProducts(ctx context.Context) ([]Product, error)
}

// ClientSource is the client query collaborator.
type ClientSource interface {
	SearchClients(ctx context.Context, text string) ([]Client, error)
}
