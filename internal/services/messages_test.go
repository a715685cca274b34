package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pizzatrack/internal/models"
)

func sampleOrder() models.Order {
	return models.Order{
		ID:            "abc",
		Number:        7,
		CustomerName:  "Ana",
		Items:         []models.OrderItem{{Name: "Margherita", Quantity: 2, Price: 30}},
		Total:         60,
		PaymentMethod: models.PaymentPix,
	}
}

func TestFormatReceivedMessage(t *testing.T) {
	msg := FormatMessage(models.DefaultSettings(), sampleOrder(), MessageReceived, "https://pizza.test/")
	want := "🍕 *Pizzaria Bella Napoli*\n\nOlá, *Ana*! ✅\n\nSeu pedido *#7* foi *recebido* e já está sendo preparado com todo carinho!\n\n" +
		"📦 *Itens:*\n• 2x Margherita\n\n💰 *Total:* R$ 60.00\n💳 *Pagamento:* PIX\n\n🔍 *Rastreie seu pedido:*\nhttps://pizza.test/track/abc\n\n_Tempo estimado: 30-45 min_ ⏱️"
	assert.Equal(t, want, msg)
}

func TestFormatDeliveringAndDelivered(t *testing.T) {
	settings := models.DefaultSettings()
	delivering := FormatMessage(settings, sampleOrder(), MessageDelivering, "https://pizza.test")
	assert.Contains(t, delivering, "Ana, seu pedido *#7* *saiu para entrega!* 🎉")
	assert.Contains(t, delivering, "https://pizza.test/track/abc")

	delivered := FormatMessage(settings, sampleOrder(), MessageDelivered, "https://pizza.test")
	assert.Contains(t, delivered, "Obrigado por escolher a *Pizzaria Bella Napoli*!")
	assert.Empty(t, FormatMessage(settings, sampleOrder(), "other", ""))
}

func TestMessageKindForStatus(t *testing.T) {
	_, ok := messageKindFor(models.StatusPreparing)
	assert.False(t, ok)
	kind, ok := messageKindFor(models.StatusDelivering)
	assert.True(t, ok)
	assert.Equal(t, MessageDelivering, kind)
}

func TestCheckoutMessageWithVariant(t *testing.T) {
	in := CheckoutInput{CustomerName: "Ana", DeliveryAddress: "Rua A, 1", PaymentMethod: models.PaymentCard}
	items := []models.OrderItem{{Name: "Calabresa", VariantName: "Grande", Quantity: 1, Price: 45.5}}
	msg := CheckoutMessage(models.DefaultSettings(), in, items, 45.5)

	want := "*🍕 NOVO PEDIDO - PIZZARIA BELLA NAPOLI*\n" +
		"--------------------------------\n" +
		"*Cliente:* Ana\n" +
		"*Endereço:* Rua A, 1\n" +
		"*Pagamento:* CARTÃO\n" +
		"--------------------------------\n" +
		"*ITENS:*\n" +
		"• 1x Calabresa (Grande) (R$ 45.50)\n" +
		"--------------------------------\n" +
		"*TOTAL: R$ 45.50*\n\n" +
		"_Pedido feito via Cardápio Digital_"
	assert.Equal(t, want, msg)
}
