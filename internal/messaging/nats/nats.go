// Package nats publishes lifecycle events as core NATS messages. Topics are
// used as subjects unchanged.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/egannguyen/go-food-delivery/internal/messaging"
)

const headerKey = "Event-Key"

type natsBroker struct {
	nc     *natsgo.Conn
	logger *zap.Logger
}

// Connect dials url and returns a publisher and subscriber sharing the connection.
func Connect(url string, logger *zap.Logger) (messaging.Publisher, messaging.Subscriber, error) {
	nc, err := natsgo.Connect(url,
		natsgo.Name("fooddelivery"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(5),
		natsgo.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	b := &natsBroker{nc: nc, logger: logger}
	return b, b, nil
}

func (b *natsBroker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := natsgo.NewMsg(topic)
	msg.Data = data
	msg.Header.Set(headerKey, key)
	if et := messaging.EventType(event); et != "" {
		msg.Header.Set("Event-Type", et)
	}

	if err := b.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Consume joins queue group groupID on topic. An empty groupID receives every message.
func (b *natsBroker) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) {
	cb := func(m *natsgo.Msg) {
		if err := handler(ctx, m.Data); err != nil {
			b.logger.Error("error handling message", zap.String("topic", topic), zap.Error(err))
		}
	}

	var (
		sub *natsgo.Subscription
		err error
	)
	if groupID == "" {
		sub, err = b.nc.Subscribe(topic, cb)
	} else {
		sub, err = b.nc.QueueSubscribe(topic, groupID, cb)
	}
	if err != nil {
		b.logger.Error("error subscribing", zap.String("topic", topic), zap.Error(err))
		return
	}

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		b.logger.Warn("error unsubscribing", zap.String("topic", topic), zap.Error(err))
	}
	b.logger.Info("consumer shutting down", zap.String("topic", topic))
}

func (b *natsBroker) Close() error {
	if b.nc.IsClosed() || b.nc.IsDraining() {
		return nil
	}
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}
