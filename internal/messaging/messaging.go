package messaging

import "context"

// Topics carrying lifecycle events. Messages are keyed by the entity id.
const (
	TopicOrderPlaced        = "orders.placed"
	TopicOrderStatusChanged = "orders.status_changed"
	TopicStoreStatusChanged = "stores.status_changed"
)

// Topics lists every topic the service publishes to.
func Topics() []string {
	return []string{TopicOrderPlaced, TopicOrderStatusChanged, TopicStoreStatusChanged}
}

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// Subscriber defines an interface for subscribing to a message topic.
// Consume blocks until ctx is cancelled.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error)
	Close() error
}

// EventType returns the type name of event when it declares one.
func EventType(event any) string {
	if e, ok := event.(interface{ EventType() string }); ok {
		return e.EventType()
	}
	return ""
}

type nopPublisher struct{}

// NopPublisher drops every event.
func NopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }
func (nopPublisher) Close() error                                            { return nil }
