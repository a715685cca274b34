// Package cart implements the storefront cart. Lines are identified by
// product id plus variant id; the same combination always merges into one line.
package cart

import (
	"errors"
	"time"

	"pizzatrack/internal/models"
	"pizzatrack/internal/pricing"
)

var (
	ErrVariantRequired    = errors.New("product requires a variant selection")
	ErrUnknownVariant     = errors.New("variant does not belong to product")
	ErrProductUnavailable = errors.New("product is not available")
	ErrItemNotFound       = errors.New("item not in cart")
)

type Item struct {
	models.Product
	SelectedVariant *models.Variant `json:"selectedVariant,omitempty"`
	Quantity        int             `json:"quantity"`
}

// Key returns the line identity for a product and optional variant.
func Key(productID, variantID string) string {
	if variantID == "" {
		return productID
	}
	return productID + "-" + variantID
}

func (i Item) Key() string {
	if i.SelectedVariant == nil {
		return Key(i.ID, "")
	}
	return Key(i.ID, i.SelectedVariant.ID)
}

func (i Item) UnitPrice() float64 {
	return pricing.UnitPrice(i.Product, i.SelectedVariant)
}

func (i Item) Subtotal() float64 {
	f, _ := pricing.LineTotal(i.UnitPrice(), i.Quantity).Round(2).Float64()
	return f
}

type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(id string) *Cart {
	return &Cart{ID: id, Items: []Item{}}
}

func (c *Cart) find(key string) int {
	for i, it := range c.Items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

// Add puts one unit of the product in the cart. Products with variants need
// variantID to name one of them.
func (c *Cart) Add(p models.Product, variantID string) error {
	if !p.Available {
		return ErrProductUnavailable
	}
	var selected *models.Variant
	if p.HasVariants() {
		if variantID == "" {
			return ErrVariantRequired
		}
		v, ok := p.Variant(variantID)
		if !ok {
			return ErrUnknownVariant
		}
		selected = &v
	} else if variantID != "" {
		return ErrUnknownVariant
	}

	if idx := c.find(Key(p.ID, variantID)); idx >= 0 {
		c.Items[idx].Quantity++
	} else {
		c.Items = append(c.Items, Item{Product: p, SelectedVariant: selected, Quantity: 1})
	}
	c.touch()
	return nil
}

// Remove takes one unit off the line and drops the line when it reaches zero.
func (c *Cart) Remove(productID, variantID string) error {
	idx := c.find(Key(productID, variantID))
	if idx < 0 {
		return ErrItemNotFound
	}
	c.Items[idx].Quantity--
	if c.Items[idx].Quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}
	c.touch()
	return nil
}

// SetQuantity overwrites the line quantity. Anything below one drops the line.
func (c *Cart) SetQuantity(productID, variantID string, quantity int) error {
	idx := c.find(Key(productID, variantID))
	if idx < 0 {
		return ErrItemNotFound
	}
	if quantity < 1 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = quantity
	}
	c.touch()
	return nil
}

func (c *Cart) Clear() {
	c.Items = []Item{}
	c.touch()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Total() float64 {
	return pricing.OrderTotal(c.OrderItems())
}

// OrderItems snapshots the lines with their resolved unit prices.
func (c *Cart) OrderItems() []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		oi := models.OrderItem{
			ID:       it.ID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.UnitPrice(),
		}
		if it.SelectedVariant != nil {
			oi.VariantName = it.SelectedVariant.Name
		}
		items = append(items, oi)
	}
	return items
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
