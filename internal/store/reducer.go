package store

import (
	"slices"

	"pizzatrack/internal/models"
)

// State is the in-process view of the catalog, orders, deliverers and settings.
// Orders are kept newest first.
type State struct {
	Orders     []models.Order
	Deliverers []models.Deliverer
	Products   []models.Product
	Categories []models.Category
	Settings   models.Settings
}

// Reduce returns the state after applying a. It never mutates s: every slice
// that changes is copied first.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AddOrder:
		s.Orders = append([]models.Order{a.Order}, s.Orders...)

	case UpdateOrder:
		s.Orders = replace(s.Orders, func(o models.Order) bool { return o.ID == a.Order.ID }, func(models.Order) models.Order {
			return a.Order
		})

	case DeleteOrder:
		s.Orders = remove(s.Orders, func(o models.Order) bool { return o.ID == a.ID })

	case SetOrderStatus:
		s.Orders = replace(s.Orders, func(o models.Order) bool { return o.ID == a.ID }, func(o models.Order) models.Order {
			o.Status = a.Status
			o.UpdatedAt = a.UpdatedAt
			return o
		})

	case AssignDeliverer:
		s.Orders = replace(s.Orders, func(o models.Order) bool { return o.ID == a.OrderID }, func(o models.Order) models.Order {
			o.DelivererID = a.DelivererID
			o.UpdatedAt = a.UpdatedAt
			return o
		})

	case SetDelivererLocation:
		s.Deliverers = replace(s.Deliverers, func(d models.Deliverer) bool { return d.ID == a.ID }, func(d models.Deliverer) models.Deliverer {
			loc := a.Location
			d.CurrentLocation = &loc
			return d
		})

	case SetOrders:
		s.Orders = slices.Clone(a.Orders)

	case SetDeliverers:
		s.Deliverers = slices.Clone(a.Deliverers)

	case UpsertDeliverer:
		s.Deliverers = upsert(s.Deliverers, a.Deliverer, func(d models.Deliverer) bool { return d.ID == a.Deliverer.ID })

	case DeleteDeliverer:
		s.Deliverers = remove(s.Deliverers, func(d models.Deliverer) bool { return d.ID == a.ID })

	case SetProducts:
		s.Products = slices.Clone(a.Products)

	case UpsertProduct:
		s.Products = upsert(s.Products, a.Product, func(p models.Product) bool { return p.ID == a.Product.ID })

	case DeleteProduct:
		s.Products = remove(s.Products, func(p models.Product) bool { return p.ID == a.ID })

	case ResetProducts:
		s.Products = []models.Product{}
		s.Categories = []models.Category{}

	case SetCategories:
		s.Categories = slices.Clone(a.Categories)

	case UpsertCategory:
		s.Categories = upsert(s.Categories, a.Category, func(c models.Category) bool { return c.ID == a.Category.ID })

	case DeleteCategory:
		s.Categories = remove(s.Categories, func(c models.Category) bool { return c.ID == a.ID })

	case UpdateSettings:
		s.Settings = a.Settings
	}
	return s
}

func replace[T any](items []T, match func(T) bool, fn func(T) T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		if match(it) {
			it = fn(it)
		}
		out[i] = it
	}
	return out
}

func remove[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out
}

func upsert[T any](items []T, item T, match func(T) bool) []T {
	if slices.IndexFunc(items, match) >= 0 {
		return replace(items, match, func(T) T { return item })
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}
