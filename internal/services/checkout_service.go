package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pizzatrack/internal/geo"
	"pizzatrack/internal/models"
	"pizzatrack/internal/store"
	"pizzatrack/pkg/payment"
	"pizzatrack/pkg/whatsapp"
)

type CheckoutService interface {
	Checkout(ctx context.Context, cartID string, in CheckoutInput) (*CheckoutResult, error)
}

type CheckoutInput struct {
	CustomerName    string               `json:"customerName"`
	CustomerPhone   string               `json:"customerPhone"`
	DeliveryAddress string               `json:"deliveryAddress"`
	DeliveryCoords  *geo.Coords          `json:"deliveryCoords"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	Notes           string               `json:"notes"`
	Change          string               `json:"change"`
	TaxID           string               `json:"taxId"`
}

// CheckoutResult carries the order and WhatsApp link on the cash path, or the
// provider's payment instructions on the online path.
type CheckoutResult struct {
	Order       *models.Order   `json:"order,omitempty"`
	Message     string          `json:"message,omitempty"`
	WhatsAppURL string          `json:"whatsappUrl,omitempty"`
	Payment     *payment.Result `json:"payment,omitempty"`
}

type checkoutService struct {
	carts    CartService
	orders   OrderService
	payments PaymentGateway
	store    *store.Store
}

func NewCheckoutService(carts CartService, orders OrderService, payments PaymentGateway, st *store.Store) CheckoutService {
	return &checkoutService{carts: carts, orders: orders, payments: payments, store: st}
}

func (in *CheckoutInput) validate() error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	in.TaxID = strings.TrimSpace(in.TaxID)

	if in.CustomerName == "" {
		return validationError("name is required")
	}
	if in.CustomerPhone == "" {
		return validationError("phone is required")
	}
	if in.DeliveryAddress == "" {
		return validationError("address is required")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCash
	}
	if !in.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPayment, in.PaymentMethod)
	}
	if in.PaymentMethod.Online() && in.TaxID == "" {
		return ErrTaxIDRequired
	}
	return nil
}

// Checkout validates before any outbound call. Cash orders are created and
// the cart is cleared; online payments leave the cart untouched until the
// provider confirms out of band.
func (s *checkoutService) Checkout(ctx context.Context, cartID string, in CheckoutInput) (*CheckoutResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	c, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	settings := s.store.Settings()
	if in.PaymentMethod.Online() {
		return s.online(ctx, settings, cartID, in, c.Total())
	}

	order, err := s.orders.CreateOrder(ctx, CreateOrderInput{
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		DeliveryAddress: in.DeliveryAddress,
		DeliveryCoords:  in.DeliveryCoords,
		Items:           c.OrderItems(),
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
	})
	if err != nil {
		return nil, err
	}

	msg := CheckoutMessage(settings, in, order.Items, order.Total)
	if err := s.carts.ClearCart(ctx, cartID); err != nil {
		slog.Warn("failed to clear cart after checkout", "cart_id", cartID, "error", err)
	}
	return &CheckoutResult{
		Order:       order,
		Message:     msg,
		WhatsAppURL: whatsapp.Link(settings.Phone, msg),
	}, nil
}

func (s *checkoutService) online(ctx context.Context, settings models.Settings, cartID string, in CheckoutInput, total float64) (*CheckoutResult, error) {
	if !settings.PaymentEnabled || settings.PaymentEndpoint == "" || s.payments == nil {
		return nil, ErrPaymentDisabled
	}

	res, err := s.payments.Create(ctx, payment.Config{
		Provider: string(settings.PaymentProvider),
		Endpoint: settings.PaymentEndpoint,
		APIKey:   settings.PaymentAPIKey,
	}, payment.Request{
		Reference:   cartID,
		Amount:      total,
		Method:      string(in.PaymentMethod),
		Description: "Pedido " + settings.Name,
		Customer: payment.Customer{
			Name:  in.CustomerName,
			Phone: in.CustomerPhone,
			TaxID: in.TaxID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return &CheckoutResult{Payment: res}, nil
}
