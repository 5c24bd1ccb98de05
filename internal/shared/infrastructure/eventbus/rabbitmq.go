package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
)

const (
	// ExchangeName is the topic exchange all planner events go through.
	ExchangeName = "memoryplanner.events"
	// DefaultQueueName is the worker's durable queue.
	DefaultQueueName = "memoryplanner.worker"

	userIDHeader = "x-user-id"
)

func declareExchange(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil)
}

// RabbitMQPublisher publishes persistent JSON messages to the exchange.
type RabbitMQPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
}

func NewRabbitMQPublisher(url string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := declareExchange(ch, ExchangeName); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("RabbitMQ publisher connected", "exchange", ExchangeName)
	return &RabbitMQPublisher{conn: conn, channel: ch, exchange: ExchangeName, logger: logger}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now(),
		CorrelationId: observability.CorrelationIDFromContext(ctx),
		Body:          payload,
	}
	if userID := observability.UserIDFromContext(ctx); userID != "" {
		msg.Headers = amqp.Table{userIDHeader: userID}
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	p.logger.DebugContext(ctx, "message published", "routing_key", routingKey, "size", len(payload))
	return nil
}

// Ping fails once the broker connection has dropped.
func (p *RabbitMQPublisher) Ping(context.Context) error {
	if p.conn.IsClosed() {
		return errors.New("connection closed")
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("error closing channel", "error", err)
	}
	return p.conn.Close()
}

// RabbitMQConsumerConfig configures the worker's queue.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Prefetch  int
	Logger    *slog.Logger
}

// RabbitMQConsumer binds a durable queue to every routing key the
// dispatcher knows and feeds deliveries to it.
type RabbitMQConsumer struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	queue      string
	prefetch   int
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, dispatcher *Dispatcher) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultQueueName
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	closeAll := func() {
		_ = ch.Close()
		_ = conn.Close()
	}
	if err := declareExchange(ch, ExchangeName); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	for _, key := range dispatcher.RoutingKeys() {
		if err := ch.QueueBind(cfg.QueueName, key, ExchangeName, false, nil); err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	cfg.Logger.Info("RabbitMQ consumer connected", "queue", cfg.QueueName, "routing_keys", dispatcher.RoutingKeys())
	return &RabbitMQConsumer{
		conn:       conn,
		channel:    ch,
		queue:      cfg.QueueName,
		prefetch:   cfg.Prefetch,
		dispatcher: dispatcher,
		logger:     cfg.Logger,
	}, nil
}

// Start consumes until ctx is cancelled or the channel closes.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	if err := c.channel.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("started consuming events", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// handle acks poison messages, requeues a failure once and drops it on the
// second failure.
func (c *RabbitMQConsumer) handle(ctx context.Context, d amqp.Delivery) {
	if d.CorrelationId != "" {
		ctx = observability.WithCorrelationID(ctx, d.CorrelationId)
	}
	if userID, ok := d.Headers[userIDHeader].(string); ok {
		ctx = observability.WithUserID(ctx, userID)
	}

	event, err := DecodeEvent(d.Body, d.RoutingKey)
	if err != nil {
		c.logger.ErrorContext(ctx, "discarding undecodable message", "routing_key", d.RoutingKey, "error", err)
		_ = d.Ack(false)
		return
	}

	if err := c.dispatcher.Dispatch(ctx, event); err != nil {
		requeue := !d.Redelivered
		c.logger.WarnContext(ctx, "event handling failed",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"requeue", requeue,
			"error", err,
		)
		if nackErr := d.Nack(false, requeue); nackErr != nil {
			c.logger.Error("failed to nack message", "error", nackErr)
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		c.logger.Error("failed to ack message", "error", ackErr)
	}
}

func (c *RabbitMQConsumer) Close() error {
	if err := c.channel.Close(); err != nil {
		c.logger.Warn("error closing channel", "error", err)
	}
	return c.conn.Close()
}
