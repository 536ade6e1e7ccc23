package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	created   []Record
	createErr error
	getErr    error
}

func (m *memRepo) Create(_ context.Context, rec Record) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.created = append(m.created, rec)
	return int64(len(m.created)), nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (Record, error) {
	if m.getErr != nil {
		return Record{}, m.getErr
	}
	rec := m.created[id-1]
	rec.ID = id
	return rec, nil
}

type recNotifier struct {
	got []Record
	err error
}

func (n *recNotifier) OrderCreated(_ context.Context, rec Record) error {
	n.got = append(n.got, rec)
	return n.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleDraft() Draft {
	normal := dec("80.00")
	return Draft{
		UserID:   42,
		Username: "ventas1",
		UserName: "Ana  ",
		Client:   "GRANJAS DEL SUR",
		RawInput: "2 bolsa negra 812\ncamiseta",
		Items: []Item{
			{Code: "B812", Description: "BOLSA NEGRA 8X12", Quantity: 2, Price: dec("85.50"), OriginalPrice: &normal, Stock: dec("10")},
			{Code: "C40", Description: "CAMISETA T40", Quantity: 1, Price: dec("12.25"), Stock: dec("0")},
		},
		Note: "  entregar tarde ",
	}
}

func TestItem_Helpers(t *testing.T) {
	d := sampleDraft()
	assert.True(t, d.Items[0].Special())
	assert.False(t, d.Items[1].Special())
	assert.True(t, d.Items[0].StockOK())
	assert.False(t, d.Items[1].StockOK())
	assert.Equal(t, "171.00", d.Items[0].Subtotal().StringFixed(2))
	assert.Equal(t, "183.25", Total(d.Items).StringFixed(2))
	assert.Equal(t, "2 BOLSA NEGRA 8X12\n1 CAMISETA T40", ProductLines(d.Items))

	same := dec("85.50")
	it := d.Items[0]
	it.OriginalPrice = &same
	assert.False(t, it.Special())
}

func TestAssembler_Finalize(t *testing.T) {
	repo := &memRepo{}
	n := &recNotifier{}
	a := NewAssembler(repo, n, nil)
	a.now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }

	rec, err := a.Finalize(context.Background(), sampleDraft())
	require.NoError(t, err)

	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, "2026-03-04", rec.Date)
	assert.Equal(t, StatusPending, rec.Status)
	assert.Equal(t, "entregar tarde", rec.Note)
	assert.Equal(t, "Ana", rec.UserName)
	assert.True(t, rec.Total.Equal(dec("183.25")))
	assert.True(t, rec.Subtotal.Equal(rec.Total))

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.ItemsJSON), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "80", items[0]["precioOriginal"])
	assert.NotContains(t, items[1], "precioOriginal")

	require.Len(t, n.got, 1)
	assert.Equal(t, rec.ID, n.got[0].ID)
}

func TestAssembler_PersistenceFailure(t *testing.T) {
	n := &recNotifier{}
	a := NewAssembler(&memRepo{createErr: errors.New("disk full")}, n, nil)

	_, err := a.Finalize(context.Background(), sampleDraft())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, n.got)
}

func TestAssembler_NotifyFailureIsNotFatal(t *testing.T) {
	a := NewAssembler(&memRepo{}, &recNotifier{err: errors.New("broker down")}, nil)
	rec, err := a.Finalize(context.Background(), sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
}

func TestAssembler_ReadBackFailureUsesBuiltRecord(t *testing.T) {
	a := NewAssembler(&memRepo{getErr: errors.New("timeout")}, nil, nil)
	rec, err := a.Finalize(context.Background(), sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, "GRANJAS DEL SUR", rec.Client)
}

func TestAssembler_BuildRejects(t *testing.T) {
	a := NewAssembler(&memRepo{}, nil, nil)

	_, err := a.Build(Draft{Client: "X", UserID: 1})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	d := sampleDraft()
	d.Client = ""
	_, err = a.Build(d)
	assert.Error(t, err)

	d = sampleDraft()
	d.Items = []Item{{Code: "Z", Description: "AJUSTE", Quantity: 1, Price: decimal.NewFromInt(-5)}}
	_, err = a.Build(d)
	assert.Error(t, err, "negative total must not validate")
}

func TestAssembler_ZeroPriceItems(t *testing.T) {
	repo := &memRepo{}
	a := NewAssembler(repo, nil, nil)

	d := sampleDraft()
	d.Items = []Item{{Code: "Z", Description: "MUESTRA GRATIS", Quantity: 2, Price: decimal.Zero, Stock: decimal.NewFromInt(9)}}
	rec, err := a.Finalize(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, rec.Total.IsZero())
	assert.Equal(t, "2 MUESTRA GRATIS", rec.Products)
}
