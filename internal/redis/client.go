package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"pizzatrack/internal/cart"
)

const (
	cartPrefix  = "cart:"
	routePrefix = "route:"
)

var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Cart persistence

// GetCart returns the stored cart or a new empty one when the id is unknown.
func (c *Client) GetCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	val, err := c.rdb.Get(ctx, cartPrefix+cartID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return cart.New(cartID), nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var ct cart.Cart
	if err := json.Unmarshal(val, &ct); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	ct.ID = cartID
	return &ct, nil
}

func (c *Client) SaveCart(ctx context.Context, ct *cart.Cart, ttl time.Duration) error {
	jsonData, err := json.Marshal(ct)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	return c.rdb.Set(ctx, cartPrefix+ct.ID, jsonData, ttl).Err()
}

func (c *Client) DeleteCart(ctx context.Context, cartID string) error {
	return c.rdb.Del(ctx, cartPrefix+cartID).Err()
}

// Route cache

func (c *Client) SetRoute(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal route: %w", err)
	}
	return c.rdb.Set(ctx, routePrefix+key, jsonData, ttl).Err()
}

// GetRoute decodes a cached route into dest, or returns ErrCacheMiss.
func (c *Client) GetRoute(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, routePrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get route: %w", err)
	}
	return json.Unmarshal(val, dest)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
