package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedidos-bot/api/internal/order"
)

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) OrderCreated(context.Context, order.Record) error {
	s.calls++
	return s.err
}

func sampleRecord() order.Record {
	return order.Record{ID: 12, Client: "GRANJAS", Status: order.StatusPending, Total: decimal.RequireFromString("10.50")}
}

func TestFanout_JoinsErrors(t *testing.T) {
	a, b, c := &stubNotifier{}, &stubNotifier{err: errors.New("nats down")}, &stubNotifier{err: errors.New("redis down")}
	err := Fanout{a, nil, b, c}.OrderCreated(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats down")
	assert.Contains(t, err.Error(), "redis down")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, c.calls)

	assert.NoError(t, Fanout{a}.OrderCreated(context.Background(), sampleRecord()))
}

func TestEncode(t *testing.T) {
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	b, err := encode(sampleRecord(), at)
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Equal(t, EventOrderCreated, env["type"])
	data := env["data"].(map[string]any)
	assert.Equal(t, "GRANJAS", data["cliente"])
	assert.Equal(t, "10.5", data["total"])
	assert.NotContains(t, data, "Items")
}

func TestBus_DeliversToConsumer(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Envelope, 1)
	require.NoError(t, bus.Consume(ctx, func(_ context.Context, env Envelope) error {
		got <- env
		return nil
	}))

	require.NoError(t, bus.OrderCreated(ctx, sampleRecord()))

	select {
	case env := <-got:
		assert.Equal(t, EventOrderCreated, env.Type)
		assert.Equal(t, int64(12), env.Data.ID)
		assert.True(t, env.Data.Total.Equal(decimal.RequireFromString("10.50")))
	case <-time.After(2 * time.Second):
		t.Fatal("order event was not delivered")
	}
}
