package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pizzatrack/internal/geo"
	"pizzatrack/internal/metrics"
	"pizzatrack/internal/models"
	"pizzatrack/internal/pricing"
	"pizzatrack/internal/repository"
	"pizzatrack/internal/store"
	"pizzatrack/pkg/whatsapp"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	UpdateOrder(ctx context.Context, id string, in UpdateOrderInput) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	AssignDeliverer(ctx context.Context, orderID string, delivererID *string) (*models.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	MessageFor(ctx context.Context, id string, kind MessageKind) (string, error)
	WhatsAppLink(ctx context.Context, id string, kind MessageKind) (string, error)
}

type CreateOrderInput struct {
	CustomerName    string               `json:"customerName"`
	CustomerPhone   string               `json:"customerPhone"`
	DeliveryAddress string               `json:"deliveryAddress"`
	DeliveryCoords  *geo.Coords          `json:"deliveryCoords"`
	Items           []models.OrderItem   `json:"items"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	Notes           string               `json:"notes"`
	DelivererID     *string              `json:"delivererId"`
}

// UpdateOrderInput is the admin edit form. Total is taken as sent; when it is
// omitted the stored total is kept.
type UpdateOrderInput struct {
	CreateOrderInput
	Total *float64 `json:"total"`
}

func (in *CreateOrderInput) normalize() error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)

	if in.CustomerName == "" {
		return validationError("customer name is required")
	}
	if in.CustomerPhone == "" {
		return validationError("customer phone is required")
	}
	if in.DeliveryAddress == "" {
		return validationError("delivery address is required")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCash
	}
	if !in.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPayment, in.PaymentMethod)
	}
	if len(in.Items) == 0 {
		return validationError("at least one item is required")
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.Name) == "" {
			return validationError("item %d has no name", i+1)
		}
		if it.Quantity < 1 {
			return validationError("item %q needs a quantity of at least 1", it.Name)
		}
		if it.Price < 0 {
			return validationError("item %q has a negative price", it.Name)
		}
	}
	if in.DeliveryCoords != nil {
		c, err := geo.ParseCoords(*in.DeliveryCoords)
		if err != nil {
			return validationError("delivery coordinates: %v", err)
		}
		in.DeliveryCoords = &c
	}
	if in.DelivererID != nil && *in.DelivererID == "" {
		in.DelivererID = nil
	}
	return nil
}

type orderService struct {
	orders   repository.OrderRepository
	counters repository.CounterRepository
	store    *store.Store
	notifier *Notifier
	baseURL  string
}

func NewOrderService(orders repository.OrderRepository, counters repository.CounterRepository, st *store.Store, notifier *Notifier, baseURL string) OrderService {
	return &orderService{orders: orders, counters: counters, store: st, notifier: notifier, baseURL: baseURL}
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := s.checkDeliverer(in.DelivererID); err != nil {
		return nil, err
	}

	number, err := s.counters.Next(ctx, models.OrderCounter)
	if err != nil {
		return nil, fmt.Errorf("next order number: %w", err)
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:              uuid.NewString(),
		Number:          number,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		DeliveryAddress: in.DeliveryAddress,
		DeliveryCoords:  in.DeliveryCoords,
		Items:           in.Items,
		Total:           pricing.OrderTotal(in.Items),
		PaymentMethod:   in.PaymentMethod,
		Status:          models.StatusReceived,
		DelivererID:     in.DelivererID,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	metrics.OrdersCreated.WithLabelValues(string(order.PaymentMethod)).Inc()
	s.store.Dispatch(store.AddOrder{Order: *order})

	settings := s.store.Settings()
	s.notifier.OrderEvent(ctx, settings, "order_created", *order)
	s.notifyCustomer(ctx, settings, order, MessageReceived)
	return order, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, id string, in UpdateOrderInput) (*models.Order, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	// a deliverer removed after assignment must not block unrelated edits
	if !sameDeliverer(order.DelivererID, in.DelivererID) {
		if err := s.checkDeliverer(in.DelivererID); err != nil {
			return nil, err
		}
	}

	order.CustomerName = in.CustomerName
	order.CustomerPhone = in.CustomerPhone
	order.DeliveryAddress = in.DeliveryAddress
	order.DeliveryCoords = in.DeliveryCoords
	order.Items = in.Items
	order.PaymentMethod = in.PaymentMethod
	order.Notes = in.Notes
	order.DelivererID = in.DelivererID
	if in.Total != nil {
		order.Total = *in.Total
	}
	order.UpdatedAt = time.Now().UTC()

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	s.store.Dispatch(store.UpdateOrder{Order: *order})
	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return s.mapErr(err, "delete order")
	}
	s.store.Dispatch(store.DeleteOrder{ID: id})
	return nil
}

// UpdateStatus accepts any status from any status. The database write comes
// first; the store and the notifications only see committed changes.
func (s *orderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	now := time.Now().UTC()
	err := s.orders.UpdateFields(ctx, id, map[string]any{
		"status":     string(status),
		"updated_at": now,
	})
	if err != nil {
		return nil, s.mapErr(err, "update status")
	}
	s.store.Dispatch(store.SetOrderStatus{ID: id, Status: status, UpdatedAt: now})
	metrics.StatusChanges.WithLabelValues(string(status)).Inc()

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	settings := s.store.Settings()
	if kind, ok := messageKindFor(status); ok {
		s.notifyCustomer(ctx, settings, order, kind)
	}
	s.notifier.OrderEvent(ctx, settings, "order_"+string(status), *order)
	return order, nil
}

func (s *orderService) AssignDeliverer(ctx context.Context, orderID string, delivererID *string) (*models.Order, error) {
	if delivererID != nil && *delivererID == "" {
		delivererID = nil
	}
	if err := s.checkDeliverer(delivererID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err := s.orders.UpdateFields(ctx, orderID, map[string]any{
		"deliverer_id": delivererID,
		"updated_at":   now,
	})
	if err != nil {
		return nil, s.mapErr(err, "assign deliverer")
	}
	s.store.Dispatch(store.AssignDeliverer{OrderID: orderID, DelivererID: delivererID, UpdatedAt: now})
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}
	return s.orders.List(ctx, filter)
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, "get order")
	}
	return order, nil
}

func (s *orderService) MessageFor(ctx context.Context, id string, kind MessageKind) (string, error) {
	if !kind.Valid() {
		return "", validationError("unknown message type %q", kind)
	}
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	return FormatMessage(s.store.Settings(), *order, kind, s.baseURL), nil
}

// WhatsAppLink is the manual fallback: a wa.me link that opens the message
// prefilled for the customer.
func (s *orderService) WhatsAppLink(ctx context.Context, id string, kind MessageKind) (string, error) {
	if !kind.Valid() {
		return "", validationError("unknown message type %q", kind)
	}
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	msg := FormatMessage(s.store.Settings(), *order, kind, s.baseURL)
	return whatsapp.Link(order.CustomerPhone, msg), nil
}

func (s *orderService) notifyCustomer(ctx context.Context, settings models.Settings, order *models.Order, kind MessageKind) {
	if order.CustomerPhone == "" {
		return
	}
	msg := FormatMessage(settings, *order, kind, s.baseURL)
	err := s.notifier.SendMessage(ctx, settings, order.CustomerPhone, msg)
	if errors.Is(err, whatsapp.ErrNotConfigured) {
		return
	}
	if err != nil {
		slog.Warn("customer notification failed", "order_id", order.ID, "kind", kind, "error", err)
		return
	}

	if err := s.orders.UpdateFields(ctx, order.ID, map[string]any{"whatsapp_sent": true}); err != nil {
		slog.Warn("failed to flag order as notified", "order_id", order.ID, "error", err)
		return
	}
	order.WhatsappSent = true
	s.store.Dispatch(store.UpdateOrder{Order: *order})
}

func (s *orderService) checkDeliverer(id *string) error {
	if id == nil {
		return nil
	}
	if _, ok := s.store.Deliverer(*id); !ok {
		return fmt.Errorf("%w: %s", ErrDelivererNotFound, *id)
	}
	return nil
}

func sameDeliverer(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *orderService) mapErr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
