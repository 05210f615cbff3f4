package events

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Channel is the part of *amqp.Channel the forwarder needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPForwarder republishes bus events to a durable RabbitMQ queue.
type AMQPForwarder struct {
	ch     Channel
	queue  string
	logger *zerolog.Logger
	conn   *amqp.Connection
}

func NewAMQPForwarder(ch Channel, queue string, logger *zerolog.Logger) (*AMQPForwarder, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &AMQPForwarder{ch: ch, queue: queue, logger: logger}, nil
}

// DialAMQP opens one long-lived connection and channel for the forwarder.
func DialAMQP(url, queue string, logger *zerolog.Logger) (*AMQPForwarder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	f, err := NewAMQPForwarder(ch, queue, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	f.conn = conn
	return f, nil
}

// Handle is an EventHandler. The event type travels as the message type.
func (f *AMQPForwarder) Handle(event *Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.CreatedAt.UTC(),
		Type:         event.Type,
		Body:         event.Payload,
	}
	if err := f.ch.PublishWithContext(ctx, "", f.queue, false, false, msg); err != nil {
		f.logger.Error().Err(err).Str("event_type", event.Type).Msg("broker publish failed")
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	f.logger.Debug().Str("event_type", event.Type).Str("queue", f.queue).Msg("event forwarded")
	return nil
}

func (f *AMQPForwarder) Close() error {
	if f.conn == nil {
		return nil
	}
	return f.conn.Close()
}
