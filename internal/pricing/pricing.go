// Package pricing resolves what a customer pays for a product line.
package pricing

import (
	"github.com/shopspring/decimal"

	"pizzatrack/internal/models"
)

// UnitPrice picks the variant price when the selected variant has one, else the
// promotional price when the product is on promotion, else the base price.
func UnitPrice(p models.Product, v *models.Variant) float64 {
	if v != nil && v.Price != nil && *v.Price > 0 {
		return *v.Price
	}
	if p.IsPromo && p.PromoPrice != nil && *p.PromoPrice > 0 {
		return *p.PromoPrice
	}
	return p.Price
}

func LineTotal(unit float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(quantity)))
}

// OrderTotal sums price x quantity over the items, rounded to cents.
func OrderTotal(items []models.OrderItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(LineTotal(it.Price, it.Quantity))
	}
	f, _ := sum.Round(2).Float64()
	return f
}

// Sum adds amounts without float drift, rounded to cents.
func Sum(amounts ...float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	f, _ := sum.Round(2).Float64()
	return f
}

// Format renders an amount the way the notification texts show it, e.g. "R$ 60.00".
func Format(amount float64) string {
	return "R$ " + decimal.NewFromFloat(amount).StringFixed(2)
}
