package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pizzatrack/internal/models"
)

func ptr(f float64) *float64 { return &f }

func TestUnitPrice(t *testing.T) {
	base := models.Product{Price: 40}
	promo := models.Product{Price: 40, IsPromo: true, PromoPrice: ptr(25)}
	promoWithoutPrice := models.Product{Price: 40, IsPromo: true}
	flaggedOff := models.Product{Price: 40, IsPromo: false, PromoPrice: ptr(25)}

	assert.Equal(t, 40.0, UnitPrice(base, nil))
	assert.Equal(t, 25.0, UnitPrice(promo, nil))
	assert.Equal(t, 40.0, UnitPrice(promoWithoutPrice, nil))
	assert.Equal(t, 40.0, UnitPrice(flaggedOff, nil))

	large := models.Variant{ID: "g", Name: "Grande", Price: ptr(55)}
	assert.Equal(t, 55.0, UnitPrice(promo, &large))

	noPrice := models.Variant{ID: "m", Name: "Média"}
	assert.Equal(t, 25.0, UnitPrice(promo, &noPrice))
}

func TestOrderTotal(t *testing.T) {
	items := []models.OrderItem{
		{Name: "Margherita", Price: 30, Quantity: 2},
	}
	assert.Equal(t, 60.0, OrderTotal(items))

	items = append(items, models.OrderItem{Name: "Refrigerante", Price: 0.1, Quantity: 3})
	assert.Equal(t, 60.3, OrderTotal(items))

	assert.Equal(t, 0.0, OrderTotal(nil))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "R$ 60.00", Format(60))
	assert.Equal(t, "R$ 12.50", Format(12.5))
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
}
