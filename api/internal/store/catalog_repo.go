package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pedidos-bot/api/internal/catalog"
)

var ErrNotFound = sql.ErrNoRows

const productSearchLimit = 50

// stock prefers the live balance over the product's own counter
const productColumns = `
select p.codigo, p.descripcion,
       coalesce(ib.cantidad_actual, p.inventario) as stock,
       p.precio
from productos p
left join inventario_balances ib on ib.producto_id = p.id`

type CatalogRepo struct{ DB *sql.DB }

func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{DB: db} }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching text literally anywhere.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// SearchProducts returns up to 50 live products whose description contains text.
func (r *CatalogRepo) SearchProducts(ctx context.Context, text string) ([]catalog.Product, error) {
	q := productColumns + `
where p.descripcion ilike $1
  and p.eliminado_en is null
order by p.descripcion
limit $2`
	return r.query(ctx, q, containsPattern(strings.TrimSpace(text)), productSearchLimit)
}

// ListAllProducts returns every live product, with or without stock.
func (r *CatalogRepo) ListAllProducts(ctx context.Context) ([]catalog.Product, error) {
	q := productColumns + `
where p.eliminado_en is null
order by p.descripcion`
	return r.query(ctx, q)
}

func (r *CatalogRepo) query(ctx context.Context, q string, args ...any) ([]catalog.Product, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.Code, &p.Description, &p.Stock, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
