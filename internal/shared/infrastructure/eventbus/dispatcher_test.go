package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
)

type recordingConsumer struct {
	keys   []string
	err    error
	events []*eventbus.ConsumedEvent
}

func (c *recordingConsumer) EventTypes() []string { return c.keys }

func (c *recordingConsumer) Handle(_ context.Context, event *eventbus.ConsumedEvent) error {
	c.events = append(c.events, event)
	return c.err
}

type itemCompletedPayload struct {
	EventID    uuid.UUID `json:"event_id"`
	RoutingKey string    `json:"routing_key"`
	OccurredAt time.Time `json:"occurred_at"`
	ItemID     string    `json:"item_id"`
}

func completedPayload(t *testing.T, itemID string) (uuid.UUID, []byte) {
	t.Helper()
	id := uuid.New()
	payload, err := json.Marshal(itemCompletedPayload{
		EventID:    id,
		RoutingKey: "planning.item.completed",
		OccurredAt: time.Now().UTC(),
		ItemID:     itemID,
	})
	require.NoError(t, err)
	return id, payload
}

func TestDecodeEvent(t *testing.T) {
	id, payload := completedPayload(t, "substep-1")

	event, err := eventbus.DecodeEvent(payload, "ignored")
	require.NoError(t, err)
	assert.Equal(t, id, event.EventID)
	assert.Equal(t, "planning.item.completed", event.RoutingKey)

	var body itemCompletedPayload
	require.NoError(t, event.Decode(&body))
	assert.Equal(t, "substep-1", body.ItemID)
}

func TestDecodeEvent_FallsBackToTransportKey(t *testing.T) {
	event, err := eventbus.DecodeEvent([]byte(`{"event_id":"`+uuid.NewString()+`"}`), "planning.plan.generated")
	require.NoError(t, err)
	assert.Equal(t, "planning.plan.generated", event.RoutingKey)

	_, err = eventbus.DecodeEvent([]byte("not json"), "planning.plan.generated")
	assert.Error(t, err)
}

func TestDispatcher_Dispatch(t *testing.T) {
	tests := []struct {
		name      string
		routing   string
		failFirst bool
		wantErr   bool
		wantFirst int
		wantOther int
	}{
		{name: "delivers to all consumers of the key", routing: "planning.item.completed", wantFirst: 1, wantOther: 1},
		{name: "unknown key is ignored", routing: "planning.unknown", wantFirst: 0, wantOther: 0},
		{name: "failure does not stop other consumers", routing: "planning.item.completed", failFirst: true, wantErr: true, wantFirst: 1, wantOther: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := &recordingConsumer{keys: []string{"planning.item.completed"}}
			if tt.failFirst {
				first.err = errors.New("store down")
			}
			other := &recordingConsumer{keys: []string{"planning.item.completed", "planning.item.reopened"}}

			metrics := observability.NewInMemoryMetrics()
			d := eventbus.NewDispatcher(nil).WithMetrics(metrics)
			d.Register(first)
			d.Register(other)

			err := d.Dispatch(context.Background(), &eventbus.ConsumedEvent{RoutingKey: tt.routing})

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, first.events, tt.wantFirst)
			assert.Len(t, other.events, tt.wantOther)
		})
	}
}

func TestDispatcher_RoutingKeys(t *testing.T) {
	d := eventbus.NewDispatcher(nil)
	d.Register(&recordingConsumer{keys: []string{"planning.item.reopened", "planning.item.completed"}})
	d.Register(&recordingConsumer{keys: []string{"planning.item.completed"}})

	assert.Equal(t, []string{"planning.item.completed", "planning.item.reopened"}, d.RoutingKeys())
}

func TestInProcessBus_Publish(t *testing.T) {
	consumer := &recordingConsumer{keys: []string{"planning.item.completed"}}
	d := eventbus.NewDispatcher(nil)
	d.Register(consumer)
	bus := eventbus.NewInProcessBus(d, nil)

	id, payload := completedPayload(t, "substep-9")
	require.NoError(t, bus.Publish(context.Background(), "planning.item.completed", payload))

	require.Len(t, consumer.events, 1)
	assert.Equal(t, id, consumer.events[0].EventID)

	// undecodable payloads are dropped
	require.NoError(t, bus.Publish(context.Background(), "planning.item.completed", []byte("{")))
	assert.Len(t, consumer.events, 1)
	assert.NoError(t, bus.Close())
}

func TestNoopPublisher(t *testing.T) {
	var p eventbus.Publisher = eventbus.NewNoopPublisher(nil)

	assert.NoError(t, p.Publish(context.Background(), "planning.plan.generated", []byte("{}")))
	assert.NoError(t, p.Close())
}
