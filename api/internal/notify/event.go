package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pedidos-bot/api/internal/order"
)

// EventOrderCreated is the event name dashboards listen for.
const EventOrderCreated = "orden:nueva"

// Envelope is the JSON body published on every channel.
type Envelope struct {
	Type       string       `json:"type"`
	Data       order.Record `json:"data"`
	OccurredAt time.Time    `json:"occurred_at"`
}

func encode(rec order.Record, at time.Time) ([]byte, error) {
	b, err := json.Marshal(Envelope{Type: EventOrderCreated, Data: rec, OccurredAt: at})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}
	return b, nil
}

// Fanout delivers every order to all of its notifiers and joins their errors.
type Fanout []order.Notifier

func (f Fanout) OrderCreated(ctx context.Context, rec order.Record) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.OrderCreated(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
