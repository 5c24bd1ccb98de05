package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	before := time.Now().UTC()

	event := newTestEvent(aggregateID)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "TestAggregate", event.AggregateType())
	assert.Equal(t, "test.aggregate.changed", event.RoutingKey())
	assert.False(t, event.OccurredAt().Before(before))
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	event := newTestEvent(uuid.New())
	meta := domain.EventMetadata{CorrelationID: uuid.New(), CausationID: uuid.New(), UserID: uuid.New()}

	var de domain.DomainEvent = event
	event.SetMetadata(meta)

	assert.Equal(t, meta, de.Metadata())
}

func TestBaseEvent_PayloadCarriesEnvelope(t *testing.T) {
	event := newTestEvent(uuid.New())
	event.Data = "hello"
	event.SetMetadata(domain.EventMetadata{UserID: uuid.New()})

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, event.EventID().String(), decoded["event_id"])
	assert.Equal(t, "test.aggregate.changed", decoded["routing_key"])
	assert.Equal(t, "hello", decoded["data"])
	assert.NotContains(t, decoded, "Meta")
}
