package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/confirmation/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	key  string
	msg  amqp.Publishing
	err  error
	sent int
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.sent++
	c.key, c.msg = key, msg
	return c.err
}

func TestNotify(t *testing.T) {
	ch := &recordingChannel{}
	n := NewNotifier(ch, "orders.confirmed")
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := n.Notify(context.Background(), domain.Event{Type: domain.EventOrderConfirmed, OrderID: "o-1", UserID: "u-1", ConfirmedAt: at})
	require.NoError(t, err)

	assert.Equal(t, "orders.confirmed", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "o-1", ch.msg.MessageId)

	var got domain.Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, "u-1", got.UserID)
	assert.True(t, got.ConfirmedAt.Equal(at))
	require.NoError(t, n.Close())
}

func TestNotifyPublishError(t *testing.T) {
	ch := &recordingChannel{err: errors.New("channel closed")}
	err := NewNotifier(ch, "q").Notify(context.Background(), domain.Event{Type: domain.EventOrderConfirmed})
	require.Error(t, err)
	assert.Equal(t, 1, ch.sent)
}
