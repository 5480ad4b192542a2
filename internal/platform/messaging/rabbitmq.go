// Package messaging holds the RabbitMQ connection plumbing shared by
// event publishers.
package messaging

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ wraps a connection and a publishing channel.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

type Option func(*RabbitMQ)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *RabbitMQ) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Connect dials the broker and opens a channel.
func Connect(url string, opts ...Option) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	r := &RabbitMQ{conn: conn, channel: channel, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger.Info("connected to rabbitmq")
	return r, nil
}

// DeclareQueue creates a durable queue if it does not exist.
func (r *RabbitMQ) DeclareQueue(name string) error {
	_, err := r.channel.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %q: %w", name, err)
	}
	return nil
}

// Publish sends a JSON payload to the named queue via the default exchange.
func (r *RabbitMQ) Publish(ctx context.Context, queue string, body []byte) error {
	err := r.channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to queue %q: %w", queue, err)
	}
	return nil
}

// Consume opens a manual-ack delivery stream from the named queue.
func (r *RabbitMQ) Consume(queue string) (<-chan amqp.Delivery, error) {
	deliveries, err := r.channel.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume queue %q: %w", queue, err)
	}
	return deliveries, nil
}

// Close releases the channel and connection.
func (r *RabbitMQ) Close() error {
	if r == nil {
		return nil
	}
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return err
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
