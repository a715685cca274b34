// Package payment creates charges for online checkout (pix and card) through
// either a hosted payment function or a legacy webhook endpoint.
package payment

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

const (
	ProviderFunction = "function"
	ProviderLegacy   = "legacy"
)

var (
	ErrNotConfigured = errors.New("payment: provider not configured")
	ErrEmptyResult   = errors.New("payment: provider returned neither a code nor a checkout url")
)

type Config struct {
	Provider string
	Endpoint string
	APIKey   string
}

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	TaxID string `json:"tax_id"`
}

// Request references the cart being paid; the order is created once the
// provider confirms the payment.
type Request struct {
	Reference   string   `json:"reference"`
	Amount      float64  `json:"amount"`
	Method      string   `json:"method"`
	Description string   `json:"description,omitempty"`
	Customer    Customer `json:"customer"`
}

// Result carries either a code to display (QR or copy-paste) or a redirect URL.
type Result struct {
	PaymentID    string `json:"payment_id"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	CheckoutURL  string `json:"checkout_url"`
}

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment: provider returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	HTTPClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{HTTPClient: &http.Client{Timeout: timeout}}
}

func (c *Client) Create(ctx context.Context, cfg Config, req Request) (*Result, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("payment: marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payment: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	switch cfg.Provider {
	case ProviderLegacy:
		if cfg.APIKey != "" {
			httpReq.Header.Set("X-API-Key", cfg.APIKey)
		}
	default:
		if cfg.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
		}
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment: post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("payment: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("payment: decode: %w", err)
	}
	if result.QRCode == "" && result.QRCodeBase64 == "" && result.CheckoutURL == "" {
		return nil, ErrEmptyResult
	}
	return &result, nil
}
