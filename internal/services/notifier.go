package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pizzatrack/internal/metrics"
	"pizzatrack/internal/models"
	"pizzatrack/pkg/webhook"
	"pizzatrack/pkg/whatsapp"
)

const (
	TestWebhookMessage = "Teste de conexão PizzaTrack → Webhook"
	TestWebhookDetails = "Se você está vendo isso, sua integração está funcionando!"
)

// Notifier fans business events out to the customer messaging provider, the
// operator webhook and the event bus. Failures are logged and counted; only
// SendMessage and TestWebhook report them to the caller.
type Notifier struct {
	sender MessageSender
	hooks  WebhookSender
	events EventPublisher
	logger *slog.Logger
}

// NewNotifier accepts nil for any channel that is not wired.
func NewNotifier(sender MessageSender, hooks WebhookSender, events EventPublisher, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{sender: sender, hooks: hooks, events: events, logger: logger}
}

func whatsappConfig(s models.Settings) whatsapp.Config {
	return whatsapp.Config{
		Provider:      string(s.WhatsAppProvider),
		APIURL:        s.WhatsAppAPIURL,
		APIKey:        s.WhatsAppAPIKey,
		InstanceName:  s.WhatsAppInstanceName,
		PhoneNumberID: s.WhatsAppPhoneNumberID,
	}
}

// SendMessage returns whatsapp.ErrNotConfigured when no provider is selected.
func (n *Notifier) SendMessage(ctx context.Context, settings models.Settings, phone, text string) error {
	if n.sender == nil || settings.WhatsAppProvider == models.WhatsAppNone || settings.WhatsAppProvider == "" {
		return whatsapp.ErrNotConfigured
	}
	err := n.sender.SendText(ctx, whatsappConfig(settings), phone, text)
	metrics.RecordNotification("whatsapp", err)
	if err != nil {
		n.logger.Warn("whatsapp send failed", "provider", settings.WhatsAppProvider, "error", err)
	}
	return err
}

func (n *Notifier) OrderEvent(ctx context.Context, settings models.Settings, event string, order models.Order) {
	n.dispatch(ctx, settings, webhook.Envelope{
		Event:    event,
		Pizzeria: settings.Name,
		Order:    webhookOrder(order),
	})
}

func (n *Notifier) CatalogEvent(ctx context.Context, settings models.Settings, event string, data any) {
	n.dispatch(ctx, settings, webhook.Envelope{
		Event:    event,
		Pizzeria: settings.Name,
		Data:     data,
	})
}

// TestWebhook posts the connectivity check regardless of the enabled flag.
func (n *Notifier) TestWebhook(ctx context.Context, settings models.Settings) error {
	if settings.WebhookURL == "" {
		return validationError("webhook url is required")
	}
	if n.hooks == nil {
		return errors.New("webhook client not configured")
	}
	err := n.hooks.Post(ctx, settings.WebhookURL, webhook.Envelope{
		Event:     "test",
		Timestamp: time.Now().UTC(),
		Pizzeria:  settings.Name,
		Message:   TestWebhookMessage,
		Details:   TestWebhookDetails,
	})
	metrics.RecordNotification("webhook", err)
	return err
}

func (n *Notifier) dispatch(ctx context.Context, settings models.Settings, env webhook.Envelope) {
	env.Timestamp = time.Now().UTC()

	if n.hooks != nil && settings.WebhookActive() {
		err := n.hooks.Post(ctx, settings.WebhookURL, env)
		metrics.RecordNotification("webhook", err)
		if err != nil {
			n.logger.Warn("webhook delivery failed", "event", env.Event, "error", err)
		}
	}

	if n.events != nil {
		err := n.events.Publish(ctx, env.Event, env)
		metrics.RecordNotification("amqp", err)
		if err != nil {
			n.logger.Warn("event publish failed", "event", env.Event, "error", err)
		}
	}
}

func webhookOrder(o models.Order) *webhook.Order {
	items := make([]webhook.Item, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, webhook.Item{
			ID:       it.ID,
			Name:     it.Name,
			Variant:  it.VariantName,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	return &webhook.Order{
		ID:            o.ID,
		Number:        o.Number,
		Customer:      o.CustomerName,
		Phone:         o.CustomerPhone,
		Address:       o.DeliveryAddress,
		Total:         o.Total,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
		Items:         items,
	}
}
