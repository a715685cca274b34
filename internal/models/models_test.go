package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pizzatrack/internal/geo"
)

func TestOrderStatusStep(t *testing.T) {
	assert.Equal(t, 0, StatusReceived.Step())
	assert.Equal(t, 3, StatusDelivered.Step())
	assert.Equal(t, -1, OrderStatus("cancelled").Step())
	assert.False(t, OrderStatus("").Valid())
	assert.Equal(t, "Saiu para entrega", StatusDelivering.Label())
}

func TestPaymentMethod(t *testing.T) {
	assert.False(t, PaymentCash.Online())
	assert.True(t, PaymentPix.Online())
	assert.True(t, PaymentCard.Online())
	assert.False(t, PaymentMethod("money").Valid())
	assert.Equal(t, "Dinheiro", PaymentCash.Label())
	assert.Equal(t, "Cartão", PaymentCard.Label())
}

func TestSettingsWithDefaults(t *testing.T) {
	s := Settings{Name: "Forno Nero", Coords: geo.Coords{200, 0}}.WithDefaults()

	assert.Equal(t, "Forno Nero", s.Name)
	assert.Equal(t, "18:00", s.OpenTime)
	assert.Equal(t, WhatsAppNone, s.WhatsAppProvider)
	assert.Equal(t, geo.Fallback, s.Coords)
	assert.Equal(t, SettingsID, s.ID)
	assert.False(t, s.WebhookActive())
}

func TestProductVariant(t *testing.T) {
	p := Product{Variants: []Variant{{ID: "g", Name: "Grande"}}}
	assert.True(t, p.HasVariants())
	v, ok := p.Variant("g")
	assert.True(t, ok)
	assert.Equal(t, "Grande", v.Name)
	_, ok = p.Variant("x")
	assert.False(t, ok)
}
