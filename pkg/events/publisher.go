// Package events publishes order and catalog events to a RabbitMQ fanout
// exchange so downstream consumers see the same envelopes as the webhook.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrNack = errors.New("events: broker did not confirm publish")

// confirmation is the broker answer for one publish.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type publishFunc func(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error)

type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	publish  publishFunc
}

// Dial connects, declares a durable fanout exchange and puts the channel in
// confirm mode.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: enable confirms: %w", err)
	}

	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		publish:  deferredPublish(ch),
	}, nil
}

func deferredPublish(ch *amqp.Channel) publishFunc {
	return func(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error) {
		dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, false, false, msg)
		if err != nil {
			return nil, err
		}
		if dc == nil {
			return nil, errors.New("channel is not in confirm mode")
		}
		return dc, nil
	}
}

// Publish sends payload as persistent JSON and waits for the broker ack of
// this publish. An ack arriving after ctx ends is dropped with its publish.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	msg, err := NewPublishing(payload)
	if err != nil {
		return err
	}

	p.mu.Lock()
	dc, err := p.publish(ctx, p.exchange, routingKey, msg)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", routingKey, err)
	}

	ack, err := dc.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ack {
		return ErrNack
	}
	return nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func NewPublishing(payload any) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("events: marshal: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	}, nil
}
