package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/egannguyen/go-food-delivery/internal/messaging"
)

type kafkaBroker struct {
	brokers []string
	logger  *zap.Logger

	mu      sync.Mutex
	writers map[string]*kafkaGo.Writer
}

// NewKafkaBroker creates a new Kafka publisher and subscriber.
func NewKafkaBroker(brokers []string, logger *zap.Logger) (messaging.Publisher, messaging.Subscriber) {
	kb := &kafkaBroker{
		brokers: brokers,
		logger:  logger,
		writers: make(map[string]*kafkaGo.Writer),
	}
	return kb, kb
}

// writer returns the cached writer for topic, creating it on first use.
func (k *kafkaBroker) writer(topic string) *kafkaGo.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()

	w, ok := k.writers[topic]
	if !ok {
		w = &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(k.brokers...),
			Topic:                  topic,
			Balancer:               &kafkaGo.Hash{},
			AllowAutoTopicCreation: true,
		}
		k.writers[topic] = w
	}
	return w
}

func (k *kafkaBroker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafkaGo.Message{
		Key:   []byte(key),
		Value: payload,
	}
	if et := messaging.EventType(event); et != "" {
		msg.Headers = append(msg.Headers, kafkaGo.Header{Key: "event_type", Value: []byte(et)})
	}

	if err := k.writer(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write to %s: %w", topic, err)
	}
	return nil
}

// readRetryDelay is the pause after a failed read before trying again.
const readRetryDelay = time.Second

type messageReader interface {
	ReadMessage(ctx context.Context) (kafkaGo.Message, error)
	Close() error
}

func (k *kafkaBroker) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer reader.Close()

	k.consume(ctx, reader, topic, readRetryDelay, handler)
}

func (k *kafkaBroker) consume(ctx context.Context, reader messageReader, topic string, retryDelay time.Duration, handler func(ctx context.Context, payload []byte) error) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				k.logger.Info("consumer shutting down", zap.String("topic", topic))
				return
			}
			k.logger.Error("error reading message", zap.String("topic", topic), zap.Error(err))

			select {
			case <-ctx.Done():
				k.logger.Info("consumer shutting down", zap.String("topic", topic))
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		if err := handler(ctx, msg.Value); err != nil {
			k.logger.Error("error handling message", zap.String("topic", topic), zap.Error(err))
		}
	}
}

func (k *kafkaBroker) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var errs []error
	for topic, w := range k.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close writer for %s: %w", topic, err))
		}
	}
	k.writers = make(map[string]*kafkaGo.Writer)
	return errors.Join(errs...)
}
