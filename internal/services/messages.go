package services

import (
	"fmt"
	"strings"

	"pizzatrack/internal/models"
	"pizzatrack/internal/pricing"
)

// MessageKind selects one of the customer notification texts.
type MessageKind string

const (
	MessageReceived   MessageKind = "received"
	MessageDelivering MessageKind = "delivering"
	MessageDelivered  MessageKind = "delivered"
)

func (k MessageKind) Valid() bool {
	return k == MessageReceived || k == MessageDelivering || k == MessageDelivered
}

// messageKindFor maps a status to its notification; preparing has none.
func messageKindFor(status models.OrderStatus) (MessageKind, bool) {
	switch status {
	case models.StatusReceived:
		return MessageReceived, true
	case models.StatusDelivering:
		return MessageDelivering, true
	case models.StatusDelivered:
		return MessageDelivered, true
	}
	return "", false
}

func TrackURL(baseURL, orderID string) string {
	return strings.TrimRight(baseURL, "/") + "/track/" + orderID
}

func FormatMessage(settings models.Settings, order models.Order, kind MessageKind, baseURL string) string {
	trackURL := TrackURL(baseURL, order.ID)

	switch kind {
	case MessageReceived:
		lines := make([]string, 0, len(order.Items))
		for _, it := range order.Items {
			lines = append(lines, fmt.Sprintf("• %dx %s", it.Quantity, it.Name))
		}
		return fmt.Sprintf("🍕 *%s*\n\nOlá, *%s*! ✅\n\nSeu pedido *#%d* foi *recebido* e já está sendo preparado com todo carinho!\n\n"+
			"📦 *Itens:*\n%s\n\n💰 *Total:* %s\n💳 *Pagamento:* %s\n\n🔍 *Rastreie seu pedido:*\n%s\n\n_Tempo estimado: 30-45 min_ ⏱️",
			settings.Name, order.CustomerName, order.Number, strings.Join(lines, "\n"),
			pricing.Format(order.Total), order.PaymentMethod.Label(), trackURL)
	case MessageDelivering:
		return fmt.Sprintf("🛵 *%s*\n\n%s, seu pedido *#%d* *saiu para entrega!* 🎉\n\n🔍 *Acompanhe em tempo real:*\n%s\n\n_Seu pedido está a caminho! Prepare-se_ 🍕",
			settings.Name, order.CustomerName, order.Number, trackURL)
	case MessageDelivered:
		return fmt.Sprintf("✅ *%s*\n\n%s, seu pedido *#%d* foi *entregue!* 🎊\n\nObrigado por escolher a *%s*!\n\n_Bom apetite!_ 🍕❤️\n\n⭐ Ficou satisfeito? Compartilhe sua experiência!",
			settings.Name, order.CustomerName, order.Number, settings.Name)
	}
	return ""
}

// CheckoutMessage is the order summary the customer sends to the pizzeria on
// the cash path.
func CheckoutMessage(settings models.Settings, in CheckoutInput, items []models.OrderItem, total float64) string {
	var b strings.Builder
	sep := "--------------------------------\n"

	fmt.Fprintf(&b, "*🍕 NOVO PEDIDO - %s*\n", strings.ToUpper(settings.Name))
	b.WriteString(sep)
	fmt.Fprintf(&b, "*Cliente:* %s\n", in.CustomerName)
	fmt.Fprintf(&b, "*Endereço:* %s\n", in.DeliveryAddress)
	fmt.Fprintf(&b, "*Pagamento:* %s", strings.ToUpper(in.PaymentMethod.Label()))
	if in.Change != "" {
		fmt.Fprintf(&b, " (Troco para R$ %s)", in.Change)
	}
	b.WriteString("\n")
	b.WriteString(sep)
	b.WriteString("*ITENS:*\n")
	for _, it := range items {
		name := it.Name
		if it.VariantName != "" {
			name += " (" + it.VariantName + ")"
		}
		sub, _ := pricing.LineTotal(it.Price, it.Quantity).Round(2).Float64()
		fmt.Fprintf(&b, "• %dx %s (%s)\n", it.Quantity, name, pricing.Format(sub))
	}
	b.WriteString(sep)
	fmt.Fprintf(&b, "*TOTAL: %s*\n\n", pricing.Format(total))
	b.WriteString("_Pedido feito via Cardápio Digital_")
	return b.String()
}
