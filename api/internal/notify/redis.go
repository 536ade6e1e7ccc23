package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pedidos-bot/api/internal/order"
)

// ChannelOrders is the Redis pub/sub channel for committed orders.
const ChannelOrders = "orders"

// Redis publishes committed orders on a pub/sub channel.
type Redis struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedis accepts a redis:// URL; a bare host:port is used as the address.
func NewRedis(url string) *Redis {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return &Redis{rdb: redis.NewClient(opt), now: time.Now}
}

func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

func (r *Redis) OrderCreated(ctx context.Context, rec order.Record) error {
	data, err := encode(rec, r.now())
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, ChannelOrders, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis channel %s: %w", ChannelOrders, err)
	}
	return nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
