package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pedidos-bot/api/internal/order"
)

// TopicOrderCreated is the in-process topic for committed orders.
const TopicOrderCreated = "orders.created"

// Bus is the in-process publisher backed by a watermill go channel.
type Bus struct {
	pubSub *gochannel.GoChannel
	log    *zap.Logger
	now    func() time.Time
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	ps := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	return &Bus{pubSub: ps, log: log, now: time.Now}
}

func (b *Bus) OrderCreated(_ context.Context, rec order.Record) error {
	payload, err := encode(rec, b.now())
	if err != nil {
		return err
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("type", EventOrderCreated)
	if err := b.pubSub.Publish(TopicOrderCreated, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", TopicOrderCreated, err)
	}
	return nil
}

// Subscribe returns the raw message stream; it ends when ctx is done.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, TopicOrderCreated)
}

// Consume runs fn for every published order until ctx is done.
// Undecodable messages are acked and dropped; fn errors nack the message.
func (b *Bus) Consume(ctx context.Context, fn func(context.Context, Envelope) error) error {
	messages, err := b.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			var env Envelope
			if err := json.Unmarshal(msg.Payload, &env); err != nil {
				b.log.Error("bad order event", zap.String("uuid", msg.UUID), zap.Error(err))
				msg.Ack()
				continue
			}
			if err := fn(ctx, env); err != nil {
				b.log.Warn("order event handler failed", zap.Int64("order_id", env.Data.ID), zap.Error(err))
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

// LogOrders is a Consume handler that writes one line per order.
func LogOrders(log *zap.Logger) func(context.Context, Envelope) error {
	return func(_ context.Context, env Envelope) error {
		log.Info("new order",
			zap.Int64("order_id", env.Data.ID),
			zap.String("client", env.Data.Client),
			zap.String("total", env.Data.Total.StringFixed(2)),
			zap.String("status", env.Data.Status),
		)
		return nil
	}
}

func (b *Bus) Close() error { return b.pubSub.Close() }
