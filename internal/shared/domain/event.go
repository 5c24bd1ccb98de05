package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to an aggregate.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata links an event to the request that caused it.
type EventMetadata struct {
	CorrelationID uuid.UUID `json:"correlation_id"`
	CausationID   uuid.UUID `json:"causation_id"`
	UserID        uuid.UUID `json:"user_id"`
}

// BaseEvent is embedded by concrete events. Its envelope fields are part of
// the serialized payload so consumers can route without the outbox row.
type BaseEvent struct {
	ID        uuid.UUID     `json:"event_id"`
	Aggregate uuid.UUID     `json:"aggregate_id"`
	Type      string        `json:"aggregate_type"`
	Key       string        `json:"routing_key"`
	At        time.Time     `json:"occurred_at"`
	Meta      EventMetadata `json:"-"`
}

// NewBaseEvent stamps a new event envelope.
func NewBaseEvent(aggregateID uuid.UUID, aggregateType, routingKey string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Aggregate: aggregateID,
		Type:      aggregateType,
		Key:       routingKey,
		At:        time.Now().UTC(),
	}
}

func (e *BaseEvent) EventID() uuid.UUID      { return e.ID }
func (e *BaseEvent) AggregateID() uuid.UUID  { return e.Aggregate }
func (e *BaseEvent) AggregateType() string   { return e.Type }
func (e *BaseEvent) RoutingKey() string      { return e.Key }
func (e *BaseEvent) OccurredAt() time.Time   { return e.At }
func (e *BaseEvent) Metadata() EventMetadata { return e.Meta }

// SetMetadata attaches request metadata.
func (e *BaseEvent) SetMetadata(metadata EventMetadata) {
	e.Meta = metadata
}
