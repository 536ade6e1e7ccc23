package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var ErrEmptyOrder = errors.New("order has no items")

// Assembler turns a confirmed draft into a persisted, announced order.
type Assembler struct {
	repo     Repository
	notifier Notifier
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

func NewAssembler(repo Repository, notifier Notifier, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		repo:     repo,
		notifier: notifier,
		validate: newValidator(),
		log:      log,
		now:      time.Now,
	}
}

// Build computes totals and the stored representation of d without touching storage.
func (a *Assembler) Build(d Draft) (Record, error) {
	if len(d.Items) == 0 {
		return Record{}, ErrEmptyOrder
	}
	js, err := json.Marshal(d.Items)
	if err != nil {
		return Record{}, fmt.Errorf("encode items: %w", err)
	}
	total := Total(d.Items)
	now := a.now()
	rec := Record{
		CreatedAt: now,
		Date:      now.Format("2006-01-02"),
		UserID:    d.UserID,
		Username:  d.Username,
		UserName:  strings.TrimSpace(d.UserName),
		RawInput:  d.RawInput,
		Client:    d.Client,
		Products:  ProductLines(d.Items),
		ItemsJSON: string(js),
		Items:     d.Items,
		Note:      strings.TrimSpace(d.Note),
		Status:    StatusPending,
		Total:     total,
		Subtotal:  total,
	}
	if err := a.validate.Struct(rec); err != nil {
		return Record{}, fmt.Errorf("invalid order: %w", err)
	}
	return rec, nil
}

// Finalize persists the order and announces it. A failed announcement is
// logged only; the order is already committed at that point.
func (a *Assembler) Finalize(ctx context.Context, d Draft) (Record, error) {
	rec, err := a.Build(d)
	if err != nil {
		return Record{}, err
	}

	id, err := a.repo.Create(ctx, rec)
	if err != nil {
		return Record{}, fmt.Errorf("failed to create order: %w", err)
	}
	rec.ID = id

	if stored, err := a.repo.GetByID(ctx, id); err != nil {
		a.log.Warn("order read-back failed", zap.Int64("order_id", id), zap.Error(err))
	} else {
		stored.Items = rec.Items
		rec = stored
	}

	a.log.Info("order created",
		zap.Int64("order_id", rec.ID),
		zap.Int64("user_id", rec.UserID),
		zap.String("client", rec.Client),
		zap.Int("items", len(rec.Items)),
		zap.String("total", rec.Total.StringFixed(2)),
	)

	if a.notifier != nil {
		if err := a.notifier.OrderCreated(ctx, rec); err != nil {
			a.log.Warn("order notification failed", zap.Int64("order_id", rec.ID), zap.Error(err))
		}
	}
	return rec, nil
}
