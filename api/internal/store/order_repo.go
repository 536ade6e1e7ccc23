package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"pedidos-bot/api/internal/order"
)

type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// Create inserts rec and returns the new order id.
func (r *OrderRepo) Create(ctx context.Context, rec order.Record) (int64, error) {
	const q = `
insert into ordenes_telegram (
  telegram_user_id, telegram_username, telegram_nombre,
  mensaje_original, cliente, productos, productos_json,
  notas, estado, total, subtotal
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
returning id`
	var id int64
	err := r.DB.QueryRowContext(ctx, q,
		rec.UserID, rec.Username, rec.UserName,
		rec.RawInput, rec.Client, rec.Products, rec.ItemsJSON,
		rec.Note, rec.Status, rec.Total, rec.Subtotal,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

// GetByID reads a full order back, items included.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (order.Record, error) {
	const q = `
select id, creado_en, to_char(fecha, 'YYYY-MM-DD'),
       telegram_user_id, telegram_username, telegram_nombre,
       mensaje_original, cliente, productos, productos_json::text,
       notas, estado, total, subtotal
from ordenes_telegram
where id = $1`
	var rec order.Record
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.CreatedAt, &rec.Date,
		&rec.UserID, &rec.Username, &rec.UserName,
		&rec.RawInput, &rec.Client, &rec.Products, &rec.ItemsJSON,
		&rec.Note, &rec.Status, &rec.Total, &rec.Subtotal,
	)
	if err != nil {
		return order.Record{}, err
	}
	if err := json.Unmarshal([]byte(rec.ItemsJSON), &rec.Items); err != nil {
		return order.Record{}, fmt.Errorf("decode items of order %d: %w", id, err)
	}
	return rec, nil
}

// CountByStatus returns how many orders are in each status, in lifecycle order.
func (r *OrderRepo) CountByStatus(ctx context.Context) ([]order.StatusCount, error) {
	const q = `
select estado, count(*)
from ordenes_telegram
group by estado
order by array_position($1::text[], estado), estado`
	rows, err := r.DB.QueryContext(ctx, q, order.Statuses)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	defer rows.Close()

	var out []order.StatusCount
	for rows.Next() {
		var c order.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
