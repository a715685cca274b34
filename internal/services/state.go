package services

import (
	"context"
	"fmt"

	"pizzatrack/internal/repository"
	"pizzatrack/internal/store"
)

type StateSources struct {
	Orders     repository.OrderRepository
	Deliverers repository.DelivererRepository
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Settings   repository.SettingsRepository
}

// LoadState reads everything the store caches. It runs once at startup,
// before the HTTP server accepts requests.
func LoadState(ctx context.Context, src StateSources) (store.State, error) {
	var st store.State

	orders, err := src.Orders.List(ctx, repository.OrderFilter{})
	if err != nil {
		return st, fmt.Errorf("load orders: %w", err)
	}
	deliverers, err := src.Deliverers.GetAll(ctx)
	if err != nil {
		return st, fmt.Errorf("load deliverers: %w", err)
	}
	products, err := src.Products.GetAll(ctx)
	if err != nil {
		return st, fmt.Errorf("load products: %w", err)
	}
	categories, err := src.Categories.GetAll(ctx)
	if err != nil {
		return st, fmt.Errorf("load categories: %w", err)
	}
	settings, err := src.Settings.Get(ctx)
	if err != nil {
		return st, fmt.Errorf("load settings: %w", err)
	}

	st.Orders = orders
	st.Deliverers = deliverers
	st.Products = products
	st.Categories = categories
	st.Settings = *settings
	return st, nil
}
