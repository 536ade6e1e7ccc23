package order

import (
	"context"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const StatusPending = "pendiente"

// Statuses lists every order state in lifecycle order.
var Statuses = []string{StatusPending, "aprobado", "empacado", "despachado", "cancelado"}

// Record is a persisted order.
type Record struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"creado_en"`
	Date      string    `json:"fecha"`

	UserID   int64  `json:"telegram_user_id" validate:"required"`
	Username string `json:"telegram_username"`
	UserName string `json:"telegram_nombre"`

	RawInput  string `json:"mensaje_original"`
	Client    string `json:"cliente" validate:"required"`
	Products  string `json:"productos" validate:"required"`
	ItemsJSON string `json:"productos_json" validate:"required,json"`
	Items     []Item `json:"-" validate:"min=1,dive"`
	Note      string `json:"notas"`
	Status    string `json:"estado" validate:"required,oneof=pendiente aprobado empacado despachado cancelado"`

	Total    decimal.Decimal `json:"total" validate:"gte=0"`
	Subtotal decimal.Decimal `json:"subtotal" validate:"gte=0"`
}

// Draft is what the conversation hands over when the user confirms.
type Draft struct {
	UserID   int64
	Username string
	UserName string
	Client   string
	RawInput string
	Items    []Item
	Note     string
}

// StatusCount is one row of the per-status order summary.
type StatusCount struct {
	Status string `json:"estado"`
	Count  int    `json:"count"`
}

// Repository persists order records.
type Repository interface {
	Create(ctx context.Context, rec Record) (int64, error)
	GetByID(ctx context.Context, id int64) (Record, error)
}

// Notifier is told about every order that was committed.
type Notifier interface {
	OrderCreated(ctx context.Context, rec Record) error
}

// newValidator compares decimals as float64 so the numeric tags apply to money fields.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			n, _ := d.Float64()
			return n
		}
		return nil
	}, decimal.Decimal{})
	return v
}
