package store

import (
	"time"

	"pizzatrack/internal/geo"
	"pizzatrack/internal/models"
)

// Action is a state change. Every concrete action is handled by Reduce.
type Action interface {
	Name() string
}

type AddOrder struct{ Order models.Order }

// UpdateOrder replaces the order with the same id.
type UpdateOrder struct{ Order models.Order }

type DeleteOrder struct{ ID string }

type SetOrderStatus struct {
	ID        string
	Status    models.OrderStatus
	UpdatedAt time.Time
}

type AssignDeliverer struct {
	OrderID     string
	DelivererID *string
	UpdatedAt   time.Time
}

// SetDelivererLocation overwrites the coordinate. No history is kept.
type SetDelivererLocation struct {
	ID       string
	Location geo.Coords
}

type SetOrders struct{ Orders []models.Order }
type SetDeliverers struct{ Deliverers []models.Deliverer }
type UpsertDeliverer struct{ Deliverer models.Deliverer }
type DeleteDeliverer struct{ ID string }

type SetProducts struct{ Products []models.Product }
type UpsertProduct struct{ Product models.Product }
type DeleteProduct struct{ ID string }

// ResetProducts empties products and categories.
type ResetProducts struct{}

type SetCategories struct{ Categories []models.Category }
type UpsertCategory struct{ Category models.Category }
type DeleteCategory struct{ ID string }

type UpdateSettings struct{ Settings models.Settings }

func (AddOrder) Name() string             { return "ADD_ORDER" }
func (UpdateOrder) Name() string          { return "UPDATE_ORDER" }
func (DeleteOrder) Name() string          { return "DELETE_ORDER" }
func (SetOrderStatus) Name() string       { return "UPDATE_ORDER_STATUS" }
func (AssignDeliverer) Name() string      { return "ASSIGN_DELIVERER" }
func (SetDelivererLocation) Name() string { return "UPDATE_DELIVERER_LOCATION" }
func (SetOrders) Name() string            { return "SET_ORDERS" }
func (SetDeliverers) Name() string        { return "SET_DELIVERERS" }
func (UpsertDeliverer) Name() string      { return "UPSERT_DELIVERER" }
func (DeleteDeliverer) Name() string      { return "DELETE_DELIVERER" }
func (SetProducts) Name() string          { return "SET_PRODUCTS" }
func (UpsertProduct) Name() string        { return "UPSERT_PRODUCT" }
func (DeleteProduct) Name() string        { return "DELETE_PRODUCT" }
func (ResetProducts) Name() string        { return "RESET_PRODUCTS" }
func (SetCategories) Name() string        { return "SET_CATEGORIES" }
func (UpsertCategory) Name() string       { return "UPSERT_CATEGORY" }
func (DeleteCategory) Name() string       { return "DELETE_CATEGORY" }
func (UpdateSettings) Name() string       { return "UPDATE_SETTINGS" }

// OrderID returns the order an action touches, if any. Tracking streams use it
// to wake up only for their own order.
func OrderID(a Action) (string, bool) {
	switch a := a.(type) {
	case AddOrder:
		return a.Order.ID, true
	case UpdateOrder:
		return a.Order.ID, true
	case DeleteOrder:
		return a.ID, true
	case SetOrderStatus:
		return a.ID, true
	case AssignDeliverer:
		return a.OrderID, true
	}
	return "", false
}
