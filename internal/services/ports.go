package services

import (
	"context"
	"io"
	"time"

	"pizzatrack/internal/cart"
	"pizzatrack/pkg/maps"
	"pizzatrack/pkg/payment"
	"pizzatrack/pkg/webhook"
	"pizzatrack/pkg/whatsapp"
)

// Outbound dependencies. The concrete clients live in pkg/ and internal/redis.

type MessageSender interface {
	SendText(ctx context.Context, cfg whatsapp.Config, phone, message string) error
}

type WebhookSender interface {
	Post(ctx context.Context, url string, env webhook.Envelope) error
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type CartStore interface {
	GetCart(ctx context.Context, cartID string) (*cart.Cart, error)
	SaveCart(ctx context.Context, c *cart.Cart, ttl time.Duration) error
	DeleteCart(ctx context.Context, cartID string) error
}

type RouteCache interface {
	GetRoute(ctx context.Context, key string, dest interface{}) error
	SetRoute(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type MapsClient interface {
	Directions(ctx context.Context, apiKey string, origin, destination maps.Point) (*maps.Route, error)
	Geocode(ctx context.Context, apiKey, address string) (maps.Point, error)
}

type PaymentGateway interface {
	Create(ctx context.Context, cfg payment.Config, req payment.Request) (*payment.Result, error)
}

type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}
