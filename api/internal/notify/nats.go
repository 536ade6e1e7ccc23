package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"pedidos-bot/api/internal/order"
)

const (
	streamName         = "EVENTS"
	SubjectOrderCreate = "events.order_created"
)

// NATS publishes committed orders to a JetStream stream.
type NATS struct {
	nc  *nats.Conn
	js  jetstream.JetStream
	now func() time.Time
}

func NewNATS(ctx context.Context, url string, log *zap.Logger) (*NATS, error) {
	if log == nil {
		log = zap.NewNop()
	}
	nc, err := nats.Connect(url,
		nats.Name("pedidos-bot"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"events.>"},
		Storage:  jetstream.FileStorage,
	}); err != nil {
		// stream may already exist with another config
		log.Warn("failed to ensure NATS stream", zap.String("stream", streamName), zap.Error(err))
	}
	return &NATS{nc: nc, js: js, now: time.Now}, nil
}

func (n *NATS) OrderCreated(ctx context.Context, rec order.Record) error {
	data, err := encode(rec, n.now())
	if err != nil {
		return err
	}
	if _, err := n.js.Publish(ctx, SubjectOrderCreate, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", SubjectOrderCreate, err)
	}
	return nil
}

func (n *NATS) Close() {
	if n.nc != nil {
		n.nc.Close()
	}
}
