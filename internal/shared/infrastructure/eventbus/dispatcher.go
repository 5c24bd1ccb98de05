package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/google/uuid"
)

// ConsumedEvent is the envelope every serialized domain event carries.
// Body keeps the full payload for consumers that decode the concrete event.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Body          json.RawMessage `json:"-"`
}

// DecodeEvent reads the envelope from payload. routingKey fills in a
// missing key from the transport.
func DecodeEvent(payload []byte, routingKey string) (*ConsumedEvent, error) {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}
	event.Body = append(json.RawMessage(nil), payload...)
	return event, nil
}

// Decode unmarshals the full payload into v.
func (e *ConsumedEvent) Decode(v any) error {
	return json.Unmarshal(e.Body, v)
}

// EventConsumer handles the routing keys it names.
type EventConsumer interface {
	EventTypes() []string
	Handle(ctx context.Context, event *ConsumedEvent) error
}

// Dispatcher fans an event out to every consumer of its routing key.
type Dispatcher struct {
	mu        sync.RWMutex
	consumers map[string][]EventConsumer
	logger    *slog.Logger
	metrics   observability.Metrics
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		consumers: make(map[string][]EventConsumer),
		logger:    logger,
		metrics:   observability.NoopMetrics{},
	}
}

// WithMetrics counts handled events on m.
func (d *Dispatcher) WithMetrics(m observability.Metrics) *Dispatcher {
	if m != nil {
		d.metrics = m
	}
	return d
}

func (d *Dispatcher) Register(consumer EventConsumer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, key := range consumer.EventTypes() {
		d.consumers[key] = append(d.consumers[key], consumer)
	}
}

// RoutingKeys lists every key with at least one consumer, sorted.
func (d *Dispatcher) RoutingKeys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.consumers))
	for key := range d.consumers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Dispatch runs every consumer even when one fails and joins the errors.
func (d *Dispatcher) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	d.mu.RLock()
	consumers := d.consumers[event.RoutingKey]
	d.mu.RUnlock()

	if len(consumers) == 0 {
		d.logger.DebugContext(ctx, "no consumers for routing key", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			d.logger.ErrorContext(ctx, "consumer failed to handle event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}

	status := "ok"
	if len(errs) > 0 {
		status = "error"
	}
	d.metrics.Counter(observability.MetricEventsConsumed, 1,
		observability.T("routing_key", event.RoutingKey), observability.T("status", status))
	return errors.Join(errs...)
}

// InProcessBus delivers published events synchronously to a Dispatcher.
// Local mode uses it in place of a broker.
type InProcessBus struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewInProcessBus(dispatcher *Dispatcher, logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{dispatcher: dispatcher, logger: logger}
}

// Publish decodes and dispatches the event. An undecodable payload is
// logged and dropped so it cannot block the outbox.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event, err := DecodeEvent(payload, routingKey)
	if err != nil {
		b.logger.ErrorContext(ctx, "dropping undecodable event", "routing_key", routingKey, "error", err)
		return nil
	}
	return b.dispatcher.Dispatch(ctx, event)
}

func (b *InProcessBus) Close() error { return nil }
