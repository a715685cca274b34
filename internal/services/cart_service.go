package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pizzatrack/internal/cart"
	"pizzatrack/internal/store"
)

type CartService interface {
	GetCart(ctx context.Context, cartID string) (*cart.Cart, error)
	AddItem(ctx context.Context, cartID, productID, variantID string) (*cart.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID, variantID string) (*cart.Cart, error)
	SetQuantity(ctx context.Context, cartID, productID, variantID string, quantity int) (*cart.Cart, error)
	ClearCart(ctx context.Context, cartID string) error
}

type cartService struct {
	carts CartStore
	store *store.Store
	ttl   time.Duration
}

func NewCartService(carts CartStore, st *store.Store, ttl time.Duration) CartService {
	return &cartService{carts: carts, store: st, ttl: ttl}
}

func (s *cartService) GetCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, validationError("cart id is required")
	}
	c, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

// AddItem resolves the product from the live catalog, so the line snapshots
// current prices.
func (s *cartService) AddItem(ctx context.Context, cartID, productID, variantID string) (*cart.Cart, error) {
	p, ok := s.store.Product(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		return c.Add(p, variantID)
	})
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID, variantID string) (*cart.Cart, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		return c.Remove(productID, variantID)
	})
}

func (s *cartService) SetQuantity(ctx context.Context, cartID, productID, variantID string, quantity int) (*cart.Cart, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		return c.SetQuantity(productID, variantID, quantity)
	})
}

func (s *cartService) ClearCart(ctx context.Context, cartID string) error {
	if err := s.carts.DeleteCart(ctx, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *cartService) mutate(ctx context.Context, cartID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	c, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.carts.SaveCart(ctx, c, s.ttl); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}
