package events

import (
	"context"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishing(t *testing.T) {
	msg, err := NewPublishing(map[string]any{"event": "order_created", "number": 3})
	require.NoError(t, err)

	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.JSONEq(t, `{"event":"order_created","number":3}`, string(msg.Body))
	assert.False(t, msg.Timestamp.IsZero())

	_, err = NewPublishing(make(chan int))
	assert.Error(t, err)
}

type fakeConfirmation struct {
	ack   chan bool
	nack  bool
	ready bool
}

func (f *fakeConfirmation) WaitContext(ctx context.Context) (bool, error) {
	if f.ready {
		return !f.nack, nil
	}
	select {
	case ack := <-f.ack:
		return ack, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func TestPublishPairsEachAckWithItsPublish(t *testing.T) {
	late := &fakeConfirmation{ack: make(chan bool, 1)}
	queue := []*fakeConfirmation{
		late,
		{ready: true, nack: true},
		{ready: true},
	}
	var keys []string
	p := &Publisher{
		exchange: "pizzatrack.events",
		publish: func(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error) {
			keys = append(keys, routingKey)
			next := queue[0]
			queue = queue[1:]
			return next, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "order_created", map[string]string{"id": "o1"}), context.Canceled)

	// the first publish is acked only after its caller gave up
	late.ack <- true

	assert.ErrorIs(t, p.Publish(context.Background(), "order_preparing", map[string]string{"id": "o1"}), ErrNack)
	assert.NoError(t, p.Publish(context.Background(), "order_delivering", map[string]string{"id": "o1"}))
	assert.Equal(t, []string{"order_created", "order_preparing", "order_delivering"}, keys)
}

func TestPublishReportsPublishError(t *testing.T) {
	p := &Publisher{
		exchange: "pizzatrack.events",
		publish: func(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error) {
			return nil, amqp.ErrClosed
		},
	}
	assert.ErrorIs(t, p.Publish(context.Background(), "order_created", nil), amqp.ErrClosed)
}

func TestPublishRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL not set")
	}

	p, err := Dial(url, "pizzatrack.events.test")
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Publish(ctx, "order_created", map[string]string{"id": "o1"}))
}
