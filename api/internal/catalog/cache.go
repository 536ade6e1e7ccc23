package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type snapshot struct {
	all      []Product
	inStock  []Product
	loadedAt time.Time
}

// Cache holds an immutable snapshot of the whole catalog. Readers never lock;
// Reload swaps the snapshot atomically. Nothing invalidates it automatically.
type Cache struct {
	src  ProductSource
	log  *zap.Logger
	snap atomic.Pointer[snapshot]
}

func NewCache(src ProductSource, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cache{src: src, log: log}
	c.snap.Store(&snapshot{})
	return c
}

// Reload fetches the full product list. On failure the previous snapshot stays in place.
func (c *Cache) Reload(ctx context.Context) error {
	rows, err := c.src.ListAllProducts(ctx)
	if err != nil {
		c.log.Warn("catalog reload failed", zap.Error(err), zap.Int("kept", len(c.All())))
		return fmt.Errorf("reload catalog: %w", err)
	}

	inStock := make([]Product, 0, len(rows))
	for _, p := range rows {
		if p.InStock() {
			inStock = append(inStock, p)
		}
	}
	c.snap.Store(&snapshot{all: rows, inStock: inStock, loadedAt: time.Now()})
	c.log.Info("catalog loaded", zap.Int("products", len(rows)), zap.Int("in_stock", len(inStock)))
	return nil
}

// All returns every cached product. The slice must not be modified.
func (c *Cache) All() []Product { return c.snap.Load().all }

// InStock returns the cached products with positive stock. The slice must not be modified.
func (c *Cache) InStock() []Product { return c.snap.Load().inStock }

func (c *Cache) LoadedAt() time.Time { return c.snap.Load().loadedAt }
