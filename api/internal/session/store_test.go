package session

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedidos-bot/api/internal/catalog"
	"pedidos-bot/api/internal/matcher"
	"pedidos-bot/api/internal/order"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestStore_CreateReplaces(t *testing.T) {
	s := NewStore(0)
	first := s.Create(7, StepAwaitClient)
	first.Client = "X"
	s.Set(7, first)

	s.Create(7, StepAwaitProducts)
	got, ok := s.Get(7)
	require.True(t, ok)
	assert.Equal(t, StepAwaitProducts, got.Step)
	assert.Empty(t, got.Client)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore(0)
	sess := &Session{
		Step:      StepVerifyStock,
		Pending:   []PendingLine{{Original: "vaso", Qty: 1, Candidates: []matcher.Match{{Product: catalog.Product{Code: "V1"}}}}},
		Confirmed: []order.Item{{Code: "A", Quantity: 1, Price: decimal.NewFromInt(1)}},
		Pricing:   &PendingPricing{Idx: 0, Qty: 1},
	}
	s.Set(1, sess)

	got, _ := s.Get(1)
	got.Pending[0].Candidates[0].Code = "CHANGED"
	got.Confirmed[0].Code = "CHANGED"
	got.Pricing.Qty = 99
	got.Step = StepAwaitNote

	again, _ := s.Get(1)
	assert.Equal(t, "V1", again.Pending[0].Candidates[0].Code)
	assert.Equal(t, "A", again.Confirmed[0].Code)
	assert.Equal(t, 1, again.Pricing.Qty)
	assert.Equal(t, StepVerifyStock, again.Step)
}

func TestStore_ClockAndClear(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewStore(0, WithClock(fixedClock(at)))
	sess := s.Create(5, StepAwaitClient)
	assert.Equal(t, at, sess.LastTouched)

	got, ok := s.Get(5)
	require.True(t, ok)
	assert.Equal(t, at, got.LastTouched)

	s.Clear(5)
	_, ok = s.Get(5)
	assert.False(t, ok)
	s.Clear(5)
}

func TestStore_TTL(t *testing.T) {
	s := NewStore(20 * time.Millisecond)
	s.Create(9, StepAwaitClient)
	_, ok := s.Get(9)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = s.Get(9)
	assert.False(t, ok)
}

func TestSession_Cursor(t *testing.T) {
	s := &Session{Pending: []PendingLine{{Original: "a"}, {Original: "b"}}}
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "a", cur.Original)
	assert.False(t, s.Done())

	s.Index = 2
	_, ok = s.Current()
	assert.False(t, ok)
	assert.True(t, s.Done())

	s.AppendRaw("1 vaso")
	s.AppendRaw("2 bolsa")
	assert.Equal(t, "1 vaso\n2 bolsa", s.RawInput)
}
