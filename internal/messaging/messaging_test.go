package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type typedEvent struct{}

func (typedEvent) EventType() string { return "Typed" }

func TestEventType(t *testing.T) {
	assert.Equal(t, "Typed", EventType(typedEvent{}))
	assert.Equal(t, "", EventType(map[string]int{"a": 1}))
}

func TestTopics(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"orders.placed",
		"orders.status_changed",
		"stores.status_changed",
	}, Topics())
}

func TestNopPublisher(t *testing.T) {
	p := NopPublisher()
	assert.NoError(t, p.PublishEvent(context.Background(), TopicOrderPlaced, "1", typedEvent{}))
	assert.NoError(t, p.Close())
}
