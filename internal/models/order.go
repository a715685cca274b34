package models

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"pizzatrack/internal/geo"
)

type Order struct {
	ID              string        `json:"id" gorm:"primaryKey;size:36"`
	Number          int           `json:"number" gorm:"uniqueIndex;not null"`
	CustomerName    string        `json:"customerName" gorm:"not null"`
	CustomerPhone   string        `json:"customerPhone"`
	DeliveryAddress string        `json:"deliveryAddress"`
	DeliveryCoords  *geo.Coords   `json:"deliveryCoords,omitempty"`
	Items           []OrderItem   `json:"items" gorm:"serializer:json"`
	Total           float64       `json:"total" gorm:"not null"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" gorm:"size:16;not null"`
	Status          OrderStatus   `json:"status" gorm:"size:16;index;not null"`
	DelivererID     *string       `json:"delivererId,omitempty" gorm:"size:36;index"`
	Notes           string        `json:"notes"`
	WhatsappSent    bool          `json:"whatsappSent"`
	CreatedAt       time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// AfterFind drops a stored destination that no longer parses, so one bad row
// never fails a listing.
func (o *Order) AfterFind(tx *gorm.DB) error {
	if o.DeliveryCoords != nil && !o.DeliveryCoords.Valid() {
		slog.Warn("ignoring unreadable delivery coordinates", "order_id", o.ID)
		o.DeliveryCoords = nil
	}
	return nil
}

// Active reports whether the order still needs work from the kitchen or a deliverer.
func (o Order) Active() bool {
	return o.Status != StatusDelivered
}

func (o Order) AssignedTo(delivererID string) bool {
	return o.DelivererID != nil && *o.DelivererID == delivererID
}

type OrderStatus string

const (
	StatusReceived   OrderStatus = "received"
	StatusPreparing  OrderStatus = "preparing"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
)

// StatusOrder is the expected progression. It is not enforced.
var StatusOrder = []OrderStatus{StatusReceived, StatusPreparing, StatusDelivering, StatusDelivered}

func (s OrderStatus) Valid() bool {
	return s.Step() >= 0
}

// Step is the index of the status in StatusOrder, or -1.
func (s OrderStatus) Step() int {
	for i, st := range StatusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Label() string {
	switch s {
	case StatusReceived:
		return "Recebido"
	case StatusPreparing:
		return "Preparando"
	case StatusDelivering:
		return "Saiu para entrega"
	case StatusDelivered:
		return "Entregue"
	}
	return string(s)
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentPix  PaymentMethod = "pix"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentCard || p == PaymentPix
}

// Online payment methods go through the payment provider and need a tax id.
func (p PaymentMethod) Online() bool {
	return p == PaymentCard || p == PaymentPix
}

func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCash:
		return "Dinheiro"
	case PaymentPix:
		return "PIX"
	default:
		return "Cartão"
	}
}
