// Package watermill publishes lifecycle events to Kafka through watermill's
// sarama-based publisher.
package watermill

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/egannguyen/go-food-delivery/internal/messaging"
)

const (
	metadataKey       = "partition_key"
	metadataEventType = "event_type"
)

type publisher struct {
	pub message.Publisher
}

// NewPublisher creates a messaging.Publisher backed by a watermill Kafka publisher.
func NewPublisher(brokers []string, clientID string, logger watermill.LoggerAdapter) (messaging.Publisher, error) {
	saramaConfig := kafka.DefaultSaramaSyncPublisherConfig()
	saramaConfig.ClientID = clientID
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll

	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             kafka.NewWithPartitioningMarshaler(partitionKey),
		OverwriteSaramaConfig: saramaConfig,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill kafka publisher: %w", err)
	}
	return &publisher{pub: pub}, nil
}

func partitionKey(topic string, msg *message.Message) (string, error) {
	return msg.Metadata.Get(metadataKey), nil
}

// marshalEvent marshals an event into a Watermill message using JSON.
func marshalEvent(key string, event any) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.Metadata.Set(metadataKey, key)
	if et := messaging.EventType(event); et != "" {
		msg.Metadata.Set(metadataEventType, et)
	}
	return msg, nil
}

func (p *publisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	msg, err := marshalEvent(key, event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg.SetContext(ctx)

	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (p *publisher) Close() error {
	return p.pub.Close()
}
