package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	ProviderNone      = "none"
	ProviderOfficial  = "official"
	ProviderEvolution = "evolution"

	DefaultGraphURL = "https://graph.facebook.com/v18.0"
)

var ErrNotConfigured = errors.New("whatsapp: provider not configured")

// Config selects the provider and carries its credentials. It mirrors the
// messaging fields of the pizzeria settings.
type Config struct {
	Provider      string
	APIURL        string
	APIKey        string
	InstanceName  string
	PhoneNumberID string
}

type Client struct {
	GraphURL   string
	HTTPClient *http.Client
}

// APIError is returned when the provider answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp: provider returned %d: %s", e.StatusCode, e.Body)
}

type evolutionRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type officialRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             officialText `json:"text"`
}

type officialText struct {
	Body string `json:"body"`
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		GraphURL: DefaultGraphURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NormalizePhone keeps digits only, so "+55 (11) 99999-0000" becomes "5511999990000".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SendText delivers a plain text message through the configured provider.
func (c *Client) SendText(ctx context.Context, cfg Config, phone, message string) error {
	phone = NormalizePhone(phone)
	if phone == "" {
		return errors.New("whatsapp: empty phone number")
	}

	switch cfg.Provider {
	case ProviderEvolution:
		if cfg.APIURL == "" || cfg.InstanceName == "" {
			return ErrNotConfigured
		}
		endpoint := fmt.Sprintf("%s/message/sendText/%s", strings.TrimRight(cfg.APIURL, "/"), url.PathEscape(cfg.InstanceName))
		headers := map[string]string{"apikey": cfg.APIKey}
		return c.post(ctx, endpoint, headers, evolutionRequest{Number: phone, Text: message})

	case ProviderOfficial:
		if cfg.PhoneNumberID == "" || cfg.APIKey == "" {
			return ErrNotConfigured
		}
		endpoint := fmt.Sprintf("%s/%s/messages", strings.TrimRight(c.GraphURL, "/"), url.PathEscape(cfg.PhoneNumberID))
		headers := map[string]string{"Authorization": "Bearer " + cfg.APIKey}
		return c.post(ctx, endpoint, headers, officialRequest{
			MessagingProduct: "whatsapp",
			To:               phone,
			Type:             "text",
			Text:             officialText{Body: message},
		})

	default:
		return ErrNotConfigured
	}
}

func (c *Client) post(ctx context.Context, endpoint string, headers map[string]string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// Link builds a wa.me deep link that opens a chat with the text prefilled.
func Link(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + NormalizePhone(phone) + "?text=" + text
}
