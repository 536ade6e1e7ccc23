package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rows []Product
	err  error
}

func (f *fakeSource) SearchProducts(context.Context, string) ([]Product, error) { return nil, nil }
func (f *fakeSource) ListAllProducts(context.Context) ([]Product, error)        { return f.rows, f.err }

func product(code string, stock int64) Product {
	return Product{Code: code, Description: code, Stock: decimal.NewFromInt(stock), Price: decimal.NewFromInt(10)}
}

func TestCache_Reload(t *testing.T) {
	src := &fakeSource{rows: []Product{product("A", 3), product("B", 0), product("C", -1)}}
	c := NewCache(src, nil)
	assert.Empty(t, c.All())
	assert.True(t, c.LoadedAt().IsZero())

	require.NoError(t, c.Reload(context.Background()))
	assert.Len(t, c.All(), 3)
	require.Len(t, c.InStock(), 1)
	assert.Equal(t, "A", c.InStock()[0].Code)
	assert.False(t, c.LoadedAt().IsZero())
}

func TestCache_ReloadFailureKeepsSnapshot(t *testing.T) {
	src := &fakeSource{rows: []Product{product("A", 3)}}
	c := NewCache(src, nil)
	require.NoError(t, c.Reload(context.Background()))

	src.err = errors.New("connection refused")
	err := c.Reload(context.Background())
	require.Error(t, err)
	assert.Len(t, c.All(), 1)
}

func TestProduct_Covers(t *testing.T) {
	p := product("A", 5)
	assert.True(t, p.Covers(5))
	assert.False(t, p.Covers(6))
	assert.True(t, p.InStock())
	assert.False(t, product("B", 0).InStock())
}
