package outbox

import (
	"testing"

	"github.com/felixgeelhaar/memoryplanner/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	domain.BaseEvent
	Data string `json:"data"`
}

func newTestEvent(aggregateID uuid.UUID, data string) *testEvent {
	return &testEvent{
		BaseEvent: domain.NewBaseEvent(aggregateID, "TestAggregate", "test.event.created"),
		Data:      data,
	}
}

func TestNewMessage(t *testing.T) {
	aggregateID := uuid.New()
	event := newTestEvent(aggregateID, "payload data")
	meta := domain.EventMetadata{CorrelationID: uuid.New(), CausationID: uuid.New(), UserID: uuid.New()}
	event.SetMetadata(meta)

	msg, err := NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, "TestAggregate", msg.AggregateType)
	assert.Equal(t, aggregateID, msg.AggregateID)
	assert.Equal(t, "test.event.created", msg.RoutingKey)
	assert.Equal(t, msg.RoutingKey, msg.EventType)
	assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
	assert.Contains(t, string(msg.Payload), "payload data")
	assert.Equal(t, meta, msg.Correlation())
	assert.Zero(t, msg.ID)
	assert.False(t, msg.IsPublished())
}

func TestMessagesFor(t *testing.T) {
	id := uuid.New()
	msgs, err := MessagesFor([]domain.DomainEvent{newTestEvent(id, "a"), newTestEvent(id, "b")})

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.NotEqual(t, msgs[0].EventID, msgs[1].EventID)
}

func TestMessage_CanRetry(t *testing.T) {
	msg := &Message{}
	assert.True(t, msg.CanRetry(3))

	msg.RetryCount = 3
	assert.False(t, msg.CanRetry(3))
}

func TestMessage_CorrelationWithoutMetadata(t *testing.T) {
	msg := &Message{Metadata: []byte("not json")}
	assert.Equal(t, domain.EventMetadata{}, msg.Correlation())
}
