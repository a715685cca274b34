// Package webhook posts event envelopes to an operator-configured URL
// (typically an n8n or Zapier workflow).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrNoURL = errors.New("webhook: url is empty")

// Envelope is the JSON body of every webhook call. Order events fill Order,
// catalog events fill Data, and the connectivity test fills Message and Details.
type Envelope struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Pizzeria  string    `json:"pizzeria"`
	Order     *Order    `json:"order,omitempty"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Details   string    `json:"details,omitempty"`
}

type Order struct {
	ID            string    `json:"id"`
	Number        int       `json:"number"`
	Customer      string    `json:"customer"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	Items         []Item    `json:"items"`
}

type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Variant  string  `json:"variant,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// StatusError is returned when the receiver answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook: receiver returned %d", e.StatusCode)
}

type Client struct {
	HTTPClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{HTTPClient: &http.Client{Timeout: timeout}}
}

// Post sends env to url. A zero Timestamp is set to now.
func (c *Client) Post(ctx context.Context, url string, env Envelope) error {
	if url == "" {
		return ErrNoURL
	}
	if env.Timestamp.IsZero() {
		env.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
