// Package amqp publishes order events to a RabbitMQ queue.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/confirmation/app"
	"github.com/dwikikusuma/storefront/internal/confirmation/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the notifier needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Notifier struct {
	ch    Channel
	queue string
	close func() error
}

var _ app.Notifier = (*Notifier)(nil)

// NewNotifier publishes to queue on the default exchange.
func NewNotifier(ch Channel, queue string) *Notifier {
	return &Notifier{ch: ch, queue: queue, close: func() error { return nil }}
}

// Dial connects to the broker and declares a durable queue.
func Dial(uri, queue string) (*Notifier, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	n := NewNotifier(ch, q.Name)
	n.close = func() error {
		return errors.Join(ch.Close(), conn.Close())
	}
	return n, nil
}

func (n *Notifier) Notify(ctx context.Context, e domain.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	err = n.ch.PublishWithContext(ctx,
		"",
		n.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         e.Type,
			MessageId:    e.OrderID,
			Timestamp:    e.ConfirmedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (n *Notifier) Close() error {
	return n.close()
}
